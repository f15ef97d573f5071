// ABOUTME: SQLite schema for feeds, articles, keywords, favorites and the FTS5 search index
// ABOUTME: Statements are idempotent so migrate runs on every open

package sqlite

const schema = `
CREATE TABLE IF NOT EXISTS feeds (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	url TEXT UNIQUE NOT NULL,
	name TEXT,
	last_polled_item_guid TEXT,
	last_successful_poll_timestamp TEXT,
	error_count INTEGER NOT NULL DEFAULT 0,
	is_enabled INTEGER NOT NULL DEFAULT 1,
	polling_interval INTEGER NOT NULL DEFAULT 30,
	max_articles INTEGER NOT NULL DEFAULT 100,
	created_at TEXT,
	last_modified TEXT,
	display_order INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS articles (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	feed_id INTEGER REFERENCES feeds (id),
	guid TEXT UNIQUE,
	link TEXT NOT NULL,
	title TEXT,
	published_date TEXT,
	fetched_date TEXT,
	raw_content TEXT,
	summary TEXT,
	llm_model_used TEXT,
	llm_processed_date TEXT,
	processing_status TEXT,
	arxiv_id TEXT,
	full_content_status TEXT DEFAULT 'not_applicable',
	full_content TEXT,
	full_content_extracted_date TEXT,
	deep_summary_status TEXT DEFAULT 'not_requested',
	deep_summary TEXT,
	deep_summary_date TEXT
);

CREATE INDEX IF NOT EXISTS idx_articles_feed ON articles (feed_id);
CREATE INDEX IF NOT EXISTS idx_articles_status ON articles (processing_status);
CREATE INDEX IF NOT EXISTS idx_articles_published ON articles (published_date);

CREATE TABLE IF NOT EXISTS keywords (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	keyword_text TEXT UNIQUE NOT NULL
);

CREATE TABLE IF NOT EXISTS article_keywords (
	article_id INTEGER REFERENCES articles (id),
	keyword_id INTEGER REFERENCES keywords (id),
	PRIMARY KEY (article_id, keyword_id)
);

CREATE TABLE IF NOT EXISTS favorites (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	article_id INTEGER NOT NULL UNIQUE REFERENCES articles (id) ON DELETE CASCADE,
	added_date TEXT,
	notes TEXT,
	tags TEXT
);

CREATE VIRTUAL TABLE IF NOT EXISTS articles_fts USING fts5(
	title,
	summary,
	raw_content,
	content=articles,
	content_rowid=id
);

CREATE TRIGGER IF NOT EXISTS articles_ai AFTER INSERT ON articles BEGIN
	INSERT INTO articles_fts (rowid, title, summary, raw_content)
	VALUES (new.id, new.title, new.summary, new.raw_content);
END;

CREATE TRIGGER IF NOT EXISTS articles_au AFTER UPDATE OF title, summary, raw_content ON articles BEGIN
	INSERT INTO articles_fts (articles_fts, rowid, title, summary, raw_content)
	VALUES ('delete', old.id, old.title, old.summary, old.raw_content);
	INSERT INTO articles_fts (rowid, title, summary, raw_content)
	VALUES (new.id, new.title, new.summary, new.raw_content);
END;
`
