package mailbox

import (
	"context"
	"path/filepath"
	"testing"

	"crawshaw.io/iox"

	"github.com/DaniBond5/mua/email"
	"github.com/DaniBond5/mua/email/msgbuilder"
	"github.com/DaniBond5/mua/mailbox/boxdb"
)

func testStore(t *testing.T) (*boxdb.Store, boxdb.Box) {
	t.Helper()
	filer := iox.NewFiler(0)
	store, err := boxdb.Open(filer, filepath.Join(t.TempDir(), "mua.db"))
	if err != nil {
		t.Fatal(err)
	}
	store.Logf = t.Logf
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Error(err)
		}
		filer.Shutdown(context.Background())
	})
	id, err := store.CreateBox("inbox")
	if err != nil {
		t.Fatal(err)
	}
	return store, boxdb.Box{ID: id, Name: "inbox"}
}

func testMessage(t *testing.T, from, subject, date string) *email.Message {
	t.Helper()
	f, err := email.ParseFrom(from)
	if err != nil {
		t.Fatal(err)
	}
	to, err := email.ParseRecipients("danibond@gmail.com")
	if err != nil {
		t.Fatal(err)
	}
	s, err := email.NewSubject(subject)
	if err != nil {
		t.Fatal(err)
	}
	d, err := email.ParseDate(date)
	if err != nil {
		t.Fatal(err)
	}
	msg, err := email.Compose(f, to, s, d, "body of "+subject, "")
	if err != nil {
		t.Fatal(err)
	}
	return msg
}

func seed(t *testing.T) (*Mailbox, []*email.Message) {
	t.Helper()
	store, box := testStore(t)
	msgs := []*email.Message{
		testMessage(t, "bruno@mail.it", "Invoice", "Tue, 1 Dec 2020 10:00:00 +0100"),
		testMessage(t, "anna@mail.it", "Party", "Thu, 3 Dec 2020 10:00:00 +0100"),
		testMessage(t, "carla@mail.it", "Agenda", "Wed, 2 Dec 2020 10:00:00 +0100"),
	}
	for _, m := range msgs {
		raw, err := msgbuilder.Render(m)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := store.Insert(box.ID, raw); err != nil {
			t.Fatal(err)
		}
	}
	mb, err := Load(store, box)
	if err != nil {
		t.Fatal(err)
	}
	return mb, msgs
}

func subjects(mb *Mailbox) []string {
	var out []string
	for _, e := range mb.Entries() {
		out = append(out, e.Msg.Subject().Text())
	}
	return out
}

func wantOrder(t *testing.T, mb *Mailbox, want ...string) {
	t.Helper()
	got := subjects(mb)
	if len(got) != len(want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestLoadNewestFirst(t *testing.T) {
	mb, _ := seed(t)
	if mb.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", mb.Len())
	}
	wantOrder(t, mb, "Party", "Agenda", "Invoice")
}

func TestLoadSkipsUnreadable(t *testing.T) {
	store, box := testStore(t)
	if _, err := store.Insert(box.ID, "this is not a message"); err != nil {
		t.Fatal(err)
	}
	raw, err := msgbuilder.Render(testMessage(t, "anna@mail.it", "Party", "Thu, 3 Dec 2020 10:00:00 +0100"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Insert(box.ID, raw); err != nil {
		t.Fatal(err)
	}
	mb, err := Load(store, box)
	if err != nil {
		t.Fatal(err)
	}
	if mb.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (corrupt row skipped)", mb.Len())
	}
}

func TestSortOrders(t *testing.T) {
	mb, _ := seed(t)

	mb.SortByDate(false)
	wantOrder(t, mb, "Invoice", "Agenda", "Party")

	mb.SortBySender(false)
	wantOrder(t, mb, "Party", "Invoice", "Agenda") // anna, bruno, carla

	mb.SortBySender(true)
	wantOrder(t, mb, "Agenda", "Invoice", "Party")

	mb.SortBySubject(false)
	wantOrder(t, mb, "Agenda", "Invoice", "Party")

	mb.SortBySubject(true)
	wantOrder(t, mb, "Party", "Invoice", "Agenda")
}

func TestSortByRecipients(t *testing.T) {
	store, box := testStore(t)
	wires := []string{
		"From: x@y.z\nTo: b@y.it\nSubject: second\nDate: Tue, 1 Dec 2020 10:00:00 +0100\n\nContent-Type: text/plain; charset=\"us-ascii\"\n\nhi",
		"From: x@y.z\nTo: a@x.it, b@y.it\nSubject: third\nDate: Tue, 1 Dec 2020 11:00:00 +0100\n\nContent-Type: text/plain; charset=\"us-ascii\"\n\nhi",
		"From: x@y.z\nTo: a@x.it\nSubject: first\nDate: Tue, 1 Dec 2020 12:00:00 +0100\n\nContent-Type: text/plain; charset=\"us-ascii\"\n\nhi",
	}
	for _, w := range wires {
		if _, err := store.Insert(box.ID, w); err != nil {
			t.Fatal(err)
		}
	}
	mb, err := Load(store, box)
	if err != nil {
		t.Fatal(err)
	}
	mb.SortByRecipients(false)
	wantOrder(t, mb, "first", "third", "second") // [a@x] < [a@x b@y] < [b@y]
}

func TestReadDelete(t *testing.T) {
	mb, _ := seed(t)

	msg, err := mb.Read(0)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := msg.Subject().Text(), "Party"; got != want {
		t.Errorf("Read(0) subject = %q, want %q", got, want)
	}
	if _, err := mb.Read(3); err == nil {
		t.Error("Read out of range must be an error")
	}

	if err := mb.Delete(0); err != nil {
		t.Fatal(err)
	}
	wantOrder(t, mb, "Agenda", "Invoice")
	if err := mb.Delete(5); err == nil {
		t.Error("Delete out of range must be an error")
	}

	// The deletion is persistent: a reload does not resurrect it.
	mb2, err := Load(mb.store, boxdb.Box{ID: mb.id, Name: mb.name})
	if err != nil {
		t.Fatal(err)
	}
	wantOrder(t, mb2, "Agenda", "Invoice")
}

func TestAdd(t *testing.T) {
	mb, _ := seed(t)
	msg := testMessage(t, "dario@mail.it", "Newest", "Fri, 4 Dec 2020 10:00:00 +0100")
	if err := mb.Add(msg); err != nil {
		t.Fatal(err)
	}
	wantOrder(t, mb, "Newest", "Party", "Agenda", "Invoice")

	mb2, err := Load(mb.store, boxdb.Box{ID: mb.id, Name: mb.name})
	if err != nil {
		t.Fatal(err)
	}
	wantOrder(t, mb2, "Newest", "Party", "Agenda", "Invoice")
}
