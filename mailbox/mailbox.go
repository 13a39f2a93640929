// Package mailbox maintains the in-memory view of one stored mailbox:
// parsed messages tied to their storage rows, reorderable by date,
// sender, recipients or subject.
//
// The codec itself never recovers from bad input; a stored message
// that fails to parse is skipped here, with a log line, so one
// corrupt row does not take the whole mailbox down.
package mailbox

import (
	"fmt"
	"sort"

	"github.com/DaniBond5/mua/email"
	"github.com/DaniBond5/mua/email/msgbuilder"
	"github.com/DaniBond5/mua/email/msgcleaver"
	"github.com/DaniBond5/mua/mailbox/boxdb"
)

// Entry ties a parsed message to its storage row, so deleting by
// view index removes the right row regardless of the current order.
type Entry struct {
	ID  boxdb.MsgID
	Msg *email.Message
}

// Mailbox is the view of one box. It is not safe for concurrent use.
type Mailbox struct {
	name    string
	id      boxdb.BoxID
	store   *boxdb.Store
	entries []Entry
}

// Load reads and parses every message of box, newest first.
func Load(store *boxdb.Store, box boxdb.Box) (*Mailbox, error) {
	rows, err := store.Entries(box.ID)
	if err != nil {
		return nil, fmt.Errorf("mailbox.Load(%q): %v", box.Name, err)
	}
	mb := &Mailbox{name: box.Name, id: box.ID, store: store}
	for _, row := range rows {
		msg, err := msgcleaver.Parse(row.Raw)
		if err != nil {
			store.Logf("mailbox %q: skipping unreadable message %v: %v", box.Name, row.ID, err)
			continue
		}
		mb.entries = append(mb.entries, Entry{ID: row.ID, Msg: msg})
	}
	mb.SortByDate(true)
	return mb, nil
}

// Name returns the mailbox name.
func (mb *Mailbox) Name() string { return mb.name }

// Len returns the number of readable messages.
func (mb *Mailbox) Len() int { return len(mb.entries) }

// Entries returns a copy of the entries in the current order.
func (mb *Mailbox) Entries() []Entry {
	cp := make([]Entry, len(mb.entries))
	copy(cp, mb.entries)
	return cp
}

// Read returns the message at index i in the current order.
func (mb *Mailbox) Read(i int) (*email.Message, error) {
	if i < 0 || i >= len(mb.entries) {
		return nil, fmt.Errorf("mailbox %q: index %d out of range [1, %d]", mb.name, i+1, len(mb.entries))
	}
	return mb.entries[i].Msg, nil
}

// Delete removes the message at index i in the current order, from
// the store and from the view.
func (mb *Mailbox) Delete(i int) error {
	if i < 0 || i >= len(mb.entries) {
		return fmt.Errorf("mailbox %q: index %d out of range [1, %d]", mb.name, i+1, len(mb.entries))
	}
	if err := mb.store.Delete(mb.entries[i].ID); err != nil {
		return err
	}
	mb.entries = append(mb.entries[:i], mb.entries[i+1:]...)
	return nil
}

// Add renders msg, persists it, and re-sorts the view newest first.
func (mb *Mailbox) Add(msg *email.Message) error {
	raw, err := msgbuilder.Render(msg)
	if err != nil {
		return err
	}
	id, err := mb.store.Insert(mb.id, raw)
	if err != nil {
		return err
	}
	mb.entries = append(mb.entries, Entry{ID: id, Msg: msg})
	mb.SortByDate(true)
	return nil
}

// SortByDate orders by the Date header, reversed when reverse is true
// (newest first).
func (mb *Mailbox) SortByDate(reverse bool) {
	mb.sortBy(reverse, func(a, b *email.Message) int {
		return a.Date().Compare(b.Date())
	})
}

// SortBySender orders by the From header's address.
func (mb *Mailbox) SortBySender(reverse bool) {
	mb.sortBy(reverse, func(a, b *email.Message) int {
		return a.From().Compare(b.From())
	})
}

// SortByRecipients orders by the To header, lexicographically over
// the address lists.
func (mb *Mailbox) SortByRecipients(reverse bool) {
	mb.sortBy(reverse, func(a, b *email.Message) int {
		return a.To().Compare(b.To())
	})
}

// SortBySubject orders by the decoded subject.
func (mb *Mailbox) SortBySubject(reverse bool) {
	mb.sortBy(reverse, func(a, b *email.Message) int {
		return a.Subject().Compare(b.Subject())
	})
}

func (mb *Mailbox) sortBy(reverse bool, cmp func(a, b *email.Message) int) {
	sort.SliceStable(mb.entries, func(i, j int) bool {
		c := cmp(mb.entries[i].Msg, mb.entries[j].Msg)
		if reverse {
			return c > 0
		}
		return c < 0
	})
}
