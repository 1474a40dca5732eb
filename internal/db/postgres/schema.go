package postgres

// Schema is idempotent DDL for the backend tables.
const Schema = `
CREATE TABLE IF NOT EXISTS books (
	id             INTEGER PRIMARY KEY,
	name           TEXT    NOT NULL,
	short_name     TEXT    NOT NULL,
	testament      TEXT    NOT NULL CHECK (testament IN ('old', 'new')),
	chapters_count INTEGER NOT NULL,
	book_order     INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS verses (
	id             BIGSERIAL PRIMARY KEY,
	book_id        INTEGER NOT NULL REFERENCES books (id),
	chapter_number INTEGER NOT NULL,
	verse_number   INTEGER NOT NULL,
	text           TEXT    NOT NULL,
	translation    TEXT    NOT NULL DEFAULT 'rst',
	UNIQUE (translation, book_id, chapter_number, verse_number)
);

CREATE TABLE IF NOT EXISTS bookmarks (
	id            BIGSERIAL PRIMARY KEY,
	user_id       BIGINT      NOT NULL,
	book_id       INTEGER     NOT NULL,
	chapter_start INTEGER     NOT NULL,
	chapter_end   INTEGER,
	verse_start   INTEGER,
	verse_end     INTEGER,
	display_text  TEXT        NOT NULL DEFAULT '',
	note          TEXT        NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS bookmarks_user_created
	ON bookmarks (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS ai_usage (
	user_id BIGINT  NOT NULL,
	date    DATE    NOT NULL,
	count   INTEGER NOT NULL CHECK (count >= 0),
	PRIMARY KEY (user_id, date)
);
`
