package load

// Statement templates, qualified with database.schema at construction time.
// The staging table holds one VARIANT row per landed file; the raw fact
// table holds one row per market per extraction cycle.

const createStagingTmpl = `CREATE TABLE IF NOT EXISTS %[1]s.RAW_JSON_STAGING (
    RAW_DATA VARIANT,
    FILE_NAME VARCHAR,
    LOADED_AT TIMESTAMP_NTZ DEFAULT CURRENT_TIMESTAMP()
);`

const createRawTmpl = `CREATE TABLE IF NOT EXISTS %[1]s.PREDICTIT_RAW (
    MARKET_ID INTEGER,
    MARKET_NAME VARCHAR,
    SHORT_NAME VARCHAR,
    MARKET_URL VARCHAR,
    MARKET_STATUS VARCHAR,
    CONTRACT_DATA VARIANT,
    EXTRACTION_TIMESTAMP TIMESTAMP_NTZ,
    LOADED_AT TIMESTAMP_NTZ DEFAULT CURRENT_TIMESTAMP()
);`

const truncateStagingTmpl = `TRUNCATE TABLE %[1]s.RAW_JSON_STAGING;`

const truncateRawTmpl = `TRUNCATE TABLE %[1]s.PREDICTIT_RAW;`

const copyIntoStagingTmpl = `COPY INTO %[1]s.RAW_JSON_STAGING (RAW_DATA, FILE_NAME)
FROM (
    SELECT
        $1,
        METADATA$FILENAME
    FROM @%[2]s
)
FILE_FORMAT = (TYPE = 'JSON')
PATTERN = '.*\.json'
FORCE = TRUE;`

const insertRawTmpl = `INSERT INTO %[1]s.PREDICTIT_RAW (
    MARKET_ID,
    MARKET_NAME,
    SHORT_NAME,
    MARKET_URL,
    MARKET_STATUS,
    CONTRACT_DATA,
    EXTRACTION_TIMESTAMP
)
SELECT
    market.value:id::INTEGER,
    market.value:name::VARCHAR,
    market.value:shortName::VARCHAR,
    market.value:url::VARCHAR,
    COALESCE(market.value:status::VARCHAR, 'Unknown'),
    market.value:contracts::VARIANT,
    r.RAW_DATA:extracted_at::TIMESTAMP_NTZ
FROM %[1]s.RAW_JSON_STAGING r,
LATERAL FLATTEN(input => r.RAW_DATA:data:markets) market;`

const countStagingTmpl = `SELECT COUNT(*) FROM %[1]s.RAW_JSON_STAGING;`

const countRawTmpl = `SELECT COUNT(*) FROM %[1]s.PREDICTIT_RAW;`
