package boxdb

const createSQL = `
-- SQL schema for a mua message store.
--
-- Messages are stored as their full wire text; the codec re-parses
-- them on load. No derived columns: the wire text is the only source
-- of truth, so codec changes never require a migration.

PRAGMA journal_mode=WAL;

CREATE TABLE IF NOT EXISTS Mailboxes (
	BoxID INTEGER PRIMARY KEY,
	Name  TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS Msgs (
	MsgID INTEGER PRIMARY KEY,
	BoxID INTEGER NOT NULL,
	Raw   TEXT NOT NULL, -- complete wire text

	FOREIGN KEY(BoxID) REFERENCES Mailboxes(BoxID)
);

CREATE INDEX IF NOT EXISTS MsgsByBox ON Msgs (BoxID);
`
