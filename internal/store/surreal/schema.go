package surreal

// SchemaSQL defines the job, document, and graph tables.
// Document and graph payloads are stored as serialized JSON strings: their
// shape is loosely schema'd and owned by the application, not the database.
const SchemaSQL = `
    -- ==========================================================================
    -- JOB TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS job SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS owner_id ON job TYPE string;
    DEFINE FIELD IF NOT EXISTS source_ref ON job TYPE string;
    DEFINE FIELD IF NOT EXISTS status ON job TYPE string DEFAULT "pending";
    DEFINE FIELD IF NOT EXISTS progress ON job TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS stage ON job TYPE string DEFAULT "queued";
    DEFINE FIELD IF NOT EXISTS result ON job TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS error ON job TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS created_at ON job TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS updated_at ON job TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS job_owner ON job FIELDS owner_id;
    DEFINE INDEX IF NOT EXISTS job_created ON job FIELDS created_at;

    -- ==========================================================================
    -- DOCUMENT TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS document SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS owner_id ON document TYPE string;
    DEFINE FIELD IF NOT EXISTS source_ref ON document TYPE string;
    DEFINE FIELD IF NOT EXISTS title ON document TYPE string;
    DEFINE FIELD IF NOT EXISTS content_type ON document TYPE string;
    DEFINE FIELD IF NOT EXISTS payload ON document TYPE string;
    DEFINE FIELD IF NOT EXISTS created_at ON document TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS document_owner ON document FIELDS owner_id;

    -- ==========================================================================
    -- GRAPH TABLE (one row per owner)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS graph SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS owner_id ON graph TYPE string;
    DEFINE FIELD IF NOT EXISTS payload ON graph TYPE string;
    DEFINE FIELD IF NOT EXISTS version ON graph TYPE int DEFAULT 1;
    DEFINE FIELD IF NOT EXISTS source_count ON graph TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS updated_at ON graph TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS graph_owner ON graph FIELDS owner_id UNIQUE;
`
