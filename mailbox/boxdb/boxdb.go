// Package boxdb persists rendered messages in a SQLite database.
//
// The schema is two tables: one row per mailbox, one row per stored
// message carrying the full wire text. The codec never sees the
// database; boxdb stores and returns opaque wire text, and the
// mailbox package parses it.
package boxdb

import (
	"fmt"
	"io"
	"log"

	"crawshaw.io/iox"
	"crawshaw.io/sqlite"
	"crawshaw.io/sqlite/sqlitex"
)

// BoxID identifies a mailbox row.
type BoxID int64

// MsgID identifies a stored message row.
type MsgID int64

func (id BoxID) String() string { return fmt.Sprintf("box%d", int64(id)) }
func (id MsgID) String() string { return fmt.Sprintf("m%d", int64(id)) }

// Box is one mailbox row.
type Box struct {
	ID   BoxID
	Name string
}

// Entry is one stored message: its row ID and the raw wire text.
type Entry struct {
	ID  MsgID
	Raw string
}

// Store is an open message database.
type Store struct {
	DB    *sqlitex.Pool
	Logf  func(format string, v ...interface{})
	filer *iox.Filer
}

// Open opens (creating if necessary) the message database at path.
func Open(filer *iox.Filer, path string) (*Store, error) {
	pool, err := sqlitex.Open(path, 0, 8)
	if err != nil {
		return nil, fmt.Errorf("boxdb.Open: %v", err)
	}
	s := &Store{
		DB:    pool,
		Logf:  log.Printf,
		filer: filer,
	}
	conn := pool.Get(nil)
	defer pool.Put(conn)
	if err := sqlitex.ExecScript(conn, createSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("boxdb.Open: %v", err)
	}
	return s, nil
}

// Close closes the underlying pool.
func (s *Store) Close() error { return s.DB.Close() }

// Boxes lists all mailboxes, ordered by name.
func (s *Store) Boxes() ([]Box, error) {
	conn := s.DB.Get(nil)
	defer s.DB.Put(conn)

	stmt := conn.Prep("SELECT BoxID, Name FROM Mailboxes ORDER BY Name;")
	var boxes []Box
	for {
		if hasNext, err := stmt.Step(); err != nil {
			return nil, fmt.Errorf("boxdb.Boxes: %v", err)
		} else if !hasNext {
			break
		}
		boxes = append(boxes, Box{
			ID:   BoxID(stmt.GetInt64("BoxID")),
			Name: stmt.GetText("Name"),
		})
	}
	return boxes, nil
}

// CreateBox creates a mailbox. Creating a name twice is an error.
func (s *Store) CreateBox(name string) (BoxID, error) {
	if name == "" {
		return 0, fmt.Errorf("boxdb.CreateBox: empty name")
	}
	conn := s.DB.Get(nil)
	defer s.DB.Put(conn)

	stmt := conn.Prep("INSERT INTO Mailboxes (Name) VALUES ($name);")
	stmt.SetText("$name", name)
	if _, err := stmt.Step(); err != nil {
		if sqlite.ErrCode(err) == sqlite.SQLITE_CONSTRAINT_UNIQUE {
			return 0, fmt.Errorf("boxdb.CreateBox(%q): exists", name)
		}
		return 0, fmt.Errorf("boxdb.CreateBox(%q): %v", name, err)
	}
	id := BoxID(conn.LastInsertRowID())
	s.Logf("boxdb: created mailbox %q (%v)", name, id)
	return id, nil
}

// Entries returns all messages stored in box, oldest row first.
func (s *Store) Entries(box BoxID) ([]Entry, error) {
	conn := s.DB.Get(nil)
	defer s.DB.Put(conn)

	stmt := conn.Prep("SELECT MsgID, Raw FROM Msgs WHERE BoxID = $box ORDER BY MsgID;")
	stmt.SetInt64("$box", int64(box))
	var entries []Entry
	for {
		if hasNext, err := stmt.Step(); err != nil {
			return nil, fmt.Errorf("boxdb.Entries(%v): %v", box, err)
		} else if !hasNext {
			break
		}
		entries = append(entries, Entry{
			ID:  MsgID(stmt.GetInt64("MsgID")),
			Raw: stmt.GetText("Raw"),
		})
	}
	return entries, nil
}

// Insert stores the wire text of one message in box.
func (s *Store) Insert(box BoxID, raw string) (MsgID, error) {
	conn := s.DB.Get(nil)
	defer s.DB.Put(conn)

	stmt := conn.Prep("INSERT INTO Msgs (BoxID, Raw) VALUES ($box, $raw);")
	stmt.SetInt64("$box", int64(box))
	stmt.SetText("$raw", raw)
	if _, err := stmt.Step(); err != nil {
		return 0, fmt.Errorf("boxdb.Insert(%v): %v", box, err)
	}
	return MsgID(conn.LastInsertRowID()), nil
}

// Import stages src in a spill-to-disk buffer and stores its content
// in box. The text is stored as read; callers that want validation
// parse it first.
func (s *Store) Import(box BoxID, src io.Reader) (MsgID, error) {
	buf := s.filer.BufferFile(0)
	defer buf.Close()
	if _, err := io.Copy(buf, src); err != nil {
		return 0, fmt.Errorf("boxdb.Import(%v): %v", box, err)
	}
	if _, err := buf.Seek(0, 0); err != nil {
		return 0, fmt.Errorf("boxdb.Import(%v): %v", box, err)
	}
	raw, err := io.ReadAll(buf)
	if err != nil {
		return 0, fmt.Errorf("boxdb.Import(%v): %v", box, err)
	}
	return s.Insert(box, string(raw))
}

// Delete removes one stored message.
func (s *Store) Delete(id MsgID) error {
	conn := s.DB.Get(nil)
	defer s.DB.Put(conn)

	stmt := conn.Prep("DELETE FROM Msgs WHERE MsgID = $id;")
	stmt.SetInt64("$id", int64(id))
	if _, err := stmt.Step(); err != nil {
		return fmt.Errorf("boxdb.Delete(%v): %v", id, err)
	}
	if conn.Changes() == 0 {
		return fmt.Errorf("boxdb.Delete(%v): no such message", id)
	}
	return nil
}
