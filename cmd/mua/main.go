// The mua command is a terminal mail user agent over a local message
// database.
//
// It runs a line-based loop on stdin:
//
//	LSM              list mailboxes
//	MBOX n           open mailbox n
//	LSE [order]      list the open mailbox; order is one of
//	                 F F- T T- S S- D D- (sender, recipients,
//	                 subject, date; "-" is descending)
//	READ n           display message n of the current listing
//	DELETE n         delete message n of the current listing
//	COMPOSE          write a new message into the open mailbox
//	EXIT             quit
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"crawshaw.io/iox"
	"github.com/k3a/html2text"
	"github.com/olekukonko/tablewriter"

	"github.com/DaniBond5/mua/email"
	"github.com/DaniBond5/mua/mailbox"
	"github.com/DaniBond5/mua/mailbox/boxdb"
)

var filer *iox.Filer
var store *boxdb.Store

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-db path] [-verbose]\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flagDB := flag.String("db", "mua.db", "message database path")
	flagVerbose := flag.Bool("verbose", false, "verbose logging")
	flag.Parse()

	filer = iox.NewFiler(0)

	var err error
	store, err = boxdb.Open(filer, *flagDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[0], err)
		exit(2)
	}
	if !*flagVerbose {
		store.Logf = func(format string, v ...interface{}) {} // drop
	}

	if err := ensureInbox(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[0], err)
		exit(2)
	}

	r := &repl{
		in:  bufio.NewScanner(os.Stdin),
		out: os.Stdout,
	}
	if err := r.run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[0], err)
		exit(1)
	}
	exit(0)
}

// ensureInbox creates the default mailbox on first run.
func ensureInbox() error {
	boxes, err := store.Boxes()
	if err != nil {
		return err
	}
	if len(boxes) > 0 {
		return nil
	}
	_, err = store.CreateBox("inbox")
	return err
}

func exit(code int) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	if store != nil {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "%s: store close error: %v\n", os.Args[0], err)
		}
	}
	if filer != nil {
		if err := filer.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "%s: filer shutdown error: %v\n", os.Args[0], err)
		}
	}
	os.Exit(code)
}

type repl struct {
	in  *bufio.Scanner
	out *os.File

	open *mailbox.Mailbox
}

func (r *repl) run() error {
	fmt.Fprintln(r.out, "mua ready. LSM lists mailboxes, EXIT quits.")
	for {
		fmt.Fprint(r.out, "> ")
		if !r.in.Scan() {
			return r.in.Err()
		}
		line := strings.TrimSpace(r.in.Text())
		if line == "" {
			continue
		}
		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		var err error
		switch strings.ToUpper(cmd) {
		case "EXIT":
			return nil
		case "LSM":
			err = r.listMailboxes()
		case "MBOX":
			err = r.openMailbox(arg)
		case "LSE":
			err = r.listEntries(arg)
		case "READ":
			err = r.readMessage(arg)
		case "DELETE":
			err = r.deleteMessage(arg)
		case "COMPOSE":
			err = r.compose()
		default:
			err = fmt.Errorf("unknown command %q", cmd)
		}
		if err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
		}
	}
}

func (r *repl) listMailboxes() error {
	boxes, err := store.Boxes()
	if err != nil {
		return err
	}
	tw := tablewriter.NewWriter(r.out)
	tw.SetHeader([]string{"#", "Mailbox"})
	for i, box := range boxes {
		tw.Append([]string{strconv.Itoa(i + 1), box.Name})
	}
	tw.Render()
	return nil
}

func (r *repl) openMailbox(arg string) error {
	boxes, err := store.Boxes()
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(boxes) {
		return fmt.Errorf("MBOX wants a mailbox number between 1 and %d", len(boxes))
	}
	mb, err := mailbox.Load(store, boxes[n-1])
	if err != nil {
		return err
	}
	r.open = mb
	fmt.Fprintf(r.out, "mailbox %q: %d messages\n", mb.Name(), mb.Len())
	return nil
}

func (r *repl) listEntries(order string) error {
	if r.open == nil {
		return fmt.Errorf("no open mailbox, use MBOX first")
	}
	switch strings.ToUpper(order) {
	case "", "D-":
		r.open.SortByDate(true)
	case "D":
		r.open.SortByDate(false)
	case "F":
		r.open.SortBySender(false)
	case "F-":
		r.open.SortBySender(true)
	case "T":
		r.open.SortByRecipients(false)
	case "T-":
		r.open.SortByRecipients(true)
	case "S":
		r.open.SortBySubject(false)
	case "S-":
		r.open.SortBySubject(true)
	default:
		return fmt.Errorf("unknown order %q, want F F- T T- S S- D D-", order)
	}

	tw := tablewriter.NewWriter(r.out)
	tw.SetHeader([]string{"#", "From", "To", "Subject", "Date"})
	tw.SetAutoWrapText(false)
	for i, e := range r.open.Entries() {
		tw.Append([]string{
			strconv.Itoa(i + 1),
			e.Msg.From().Value(),
			e.Msg.To().Value(),
			e.Msg.Subject().Value(),
			e.Msg.Date().Value(),
		})
	}
	tw.Render()
	return nil
}

func (r *repl) message(arg string) (*email.Message, int, error) {
	if r.open == nil {
		return nil, 0, fmt.Errorf("no open mailbox, use MBOX first")
	}
	n, err := strconv.Atoi(arg)
	if err != nil {
		return nil, 0, fmt.Errorf("want a message number, have %q", arg)
	}
	msg, err := r.open.Read(n - 1)
	if err != nil {
		return nil, 0, err
	}
	return msg, n - 1, nil
}

func (r *repl) readMessage(arg string) error {
	msg, _, err := r.message(arg)
	if err != nil {
		return err
	}

	tw := tablewriter.NewWriter(r.out)
	tw.SetAutoWrapText(false)
	for _, h := range msg.Headers() {
		tw.Append([]string{h.Type(), h.Value()})
	}
	tw.Render()

	parts := msg.Parts()
	if len(parts) == 1 {
		fmt.Fprintln(r.out, parts[0].Body())
		return nil
	}
	// Multipart: the terminal shows the flattened HTML alternative,
	// falling back to the plain part when flattening yields nothing.
	if text := html2text.HTML2Text(parts[2].Body()); strings.TrimSpace(text) != "" {
		fmt.Fprintln(r.out, text)
	} else {
		fmt.Fprintln(r.out, parts[1].Body())
	}
	return nil
}

func (r *repl) deleteMessage(arg string) error {
	_, i, err := r.message(arg)
	if err != nil {
		return err
	}
	if err := r.open.Delete(i); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "deleted message %s\n", arg)
	return nil
}

func (r *repl) compose() error {
	if r.open == nil {
		return fmt.Errorf("no open mailbox, use MBOX first")
	}
	from, err := email.ParseFrom(r.prompt("From: "))
	if err != nil {
		return err
	}
	to, err := email.ParseRecipients(r.prompt("To: "))
	if err != nil {
		return err
	}
	subject, err := email.NewSubject(r.prompt("Subject: "))
	if err != nil {
		return err
	}
	date, err := email.NewDate(time.Now())
	if err != nil {
		return err
	}

	fmt.Fprintln(r.out, "Text body, end with a lone '.':")
	textBody, err := r.readBody()
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out, "HTML body, end with a lone '.' (empty for none):")
	htmlBody, err := r.readBody()
	if err != nil {
		return err
	}

	msg, err := email.Compose(from, to, subject, date, textBody, htmlBody)
	if err != nil {
		return err
	}
	if err := r.open.Add(msg); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "stored in %q\n", r.open.Name())
	return nil
}

func (r *repl) prompt(label string) string {
	fmt.Fprint(r.out, label)
	if !r.in.Scan() {
		return ""
	}
	return strings.TrimSpace(r.in.Text())
}

// readBody collects lines until a lone "." and joins them with \n.
func (r *repl) readBody() (string, error) {
	var lines []string
	for r.in.Scan() {
		line := r.in.Text()
		if line == "." {
			return strings.Join(lines, "\n"), nil
		}
		lines = append(lines, line)
	}
	if err := r.in.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("input ended before the closing '.'")
}
