package sqlite

// Schema is created by `store init` and by tests. WAL is enabled via the DSN.
const schema = `
CREATE TABLE IF NOT EXISTS jobs (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    platform         TEXT NOT NULL,
    external_id      TEXT,
    url              TEXT NOT NULL,
    url_hash         TEXT NOT NULL UNIQUE,
    fuzzy_hash       TEXT NOT NULL,
    title            TEXT NOT NULL,
    company          TEXT NOT NULL,
    location         TEXT NOT NULL DEFAULT '',
    description      TEXT NOT NULL DEFAULT '',
    description_md   TEXT NOT NULL DEFAULT '',
    salary_min       INTEGER,
    salary_max       INTEGER,
    salary_currency  TEXT NOT NULL DEFAULT 'USD',
    salary_text      TEXT NOT NULL DEFAULT '',
    remote_type      TEXT NOT NULL DEFAULT '',
    visa_sponsorship INTEGER NOT NULL DEFAULT 0,
    easy_apply       INTEGER NOT NULL DEFAULT 0,
    match_score      REAL,
    match_reasoning  TEXT NOT NULL DEFAULT '',
    key_requirements TEXT NOT NULL DEFAULT '[]',
    red_flags        TEXT NOT NULL DEFAULT '[]',
    status           TEXT NOT NULL DEFAULT 'new'
        CHECK (status IN ('new','filtered','matched','rejected','approved','skipped','applied','failed')),
    decision_type    TEXT
        CHECK (decision_type IS NULL OR decision_type IN ('auto','manual')),
    source           TEXT NOT NULL,
    source_priority  INTEGER NOT NULL DEFAULT 3
        CHECK (source_priority BETWEEN 1 AND 3),
    is_processed     INTEGER NOT NULL DEFAULT 0,
    scraped_at       TIMESTAMP NOT NULL,
    filtered_at      TIMESTAMP,
    decided_at       TIMESTAMP,
    applied_at       TIMESTAMP,
    UNIQUE (platform, external_id)
);

CREATE INDEX IF NOT EXISTS idx_jobs_fuzzy_hash ON jobs(fuzzy_hash);
CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
CREATE INDEX IF NOT EXISTS idx_jobs_unprocessed ON jobs(is_processed, scraped_at);
CREATE INDEX IF NOT EXISTS idx_jobs_company ON jobs(company);

CREATE TABLE IF NOT EXISTS applications (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    job_id        INTEGER NOT NULL UNIQUE REFERENCES jobs(id),
    resume_path   TEXT NOT NULL DEFAULT '',
    status        TEXT NOT NULL DEFAULT 'pending'
        CHECK (status IN ('pending','submitted','failed')),
    error_message TEXT NOT NULL DEFAULT '',
    attempts      INTEGER NOT NULL DEFAULT 0,
    submitted_at  TIMESTAMP,
    created_at    TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS resumes (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    job_id          INTEGER NOT NULL REFERENCES jobs(id),
    pdf_path        TEXT NOT NULL,
    highlights      TEXT NOT NULL DEFAULT '[]',
    tailoring_notes TEXT NOT NULL DEFAULT '',
    generated_at    TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_resumes_job ON resumes(job_id, generated_at);

CREATE TABLE IF NOT EXISTS runs (
    id                    INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at            TIMESTAMP NOT NULL,
    completed_at          TIMESTAMP,
    jobs_scraped          INTEGER NOT NULL DEFAULT 0,
    jobs_filtered         INTEGER NOT NULL DEFAULT 0,
    jobs_matched          INTEGER NOT NULL DEFAULT 0,
    jobs_auto_applied     INTEGER NOT NULL DEFAULT 0,
    jobs_pending_decision INTEGER NOT NULL DEFAULT 0,
    jobs_failed           INTEGER NOT NULL DEFAULT 0,
    status                TEXT NOT NULL DEFAULT 'running'
        CHECK (status IN ('running','completed','failed'))
);

CREATE TABLE IF NOT EXISTS blacklist (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    type       TEXT NOT NULL,
    value      TEXT NOT NULL,
    reason     TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL,
    UNIQUE (type, value)
);

CREATE TABLE IF NOT EXISTS logs (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    level      TEXT NOT NULL,
    component  TEXT NOT NULL,
    message    TEXT NOT NULL,
    details    TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL
);
`
