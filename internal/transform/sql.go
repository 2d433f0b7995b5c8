package transform

// Analytics DDL and transform statements. %[1]s is the analytics qualifier
// (database.schema), %[2]s the raw qualifier.

const createMarketSummaryTmpl = `CREATE TABLE IF NOT EXISTS %[1]s.MARKET_SUMMARY (
    MARKET_ID INTEGER,
    MARKET_NAME VARCHAR,
    SHORT_NAME VARCHAR,
    MARKET_URL VARCHAR,
    MARKET_STATUS VARCHAR,
    TOTAL_CONTRACTS INTEGER,
    TOTAL_VOLUME DECIMAL(18,2),
    LAST_UPDATED TIMESTAMP_NTZ
);`

const createContractDetailsTmpl = `CREATE TABLE IF NOT EXISTS %[1]s.CONTRACT_DETAILS (
    CONTRACT_ID INTEGER,
    MARKET_ID INTEGER,
    CONTRACT_NAME VARCHAR,
    CONTRACT_STATUS VARCHAR,
    LAST_TRADE_PRICE DECIMAL(10,4),
    BEST_BUY_YES_COST DECIMAL(10,4),
    BEST_SELL_YES_COST DECIMAL(10,4),
    BEST_BUY_NO_COST DECIMAL(10,4),
    BEST_SELL_NO_COST DECIMAL(10,4),
    LAST_CLOSE_PRICE DECIMAL(10,4),
    DISPLAY_ORDER INTEGER,
    LAST_UPDATED TIMESTAMP_NTZ
);`

const createDailyMetricsTmpl = `CREATE TABLE IF NOT EXISTS %[1]s.DAILY_MARKET_METRICS (
    MARKET_ID INTEGER,
    METRIC_DATE DATE,
    TOTAL_CONTRACTS INTEGER,
    TOTAL_VOLUME DECIMAL(18,4),
    AVG_TRADE_PRICE DECIMAL(10,4),
    PRICE_VOLATILITY DECIMAL(10,4)
);`

const truncateMarketSummaryTmpl = `TRUNCATE TABLE %[1]s.MARKET_SUMMARY;`

const truncateContractDetailsTmpl = `TRUNCATE TABLE %[1]s.CONTRACT_DETAILS;`

// Latest snapshot per market, tie-broken by most recent extraction
// timestamp. Volume is a placeholder until a true volume source exists.
const insertMarketSummaryTmpl = `INSERT INTO %[1]s.MARKET_SUMMARY (
    MARKET_ID, MARKET_NAME, SHORT_NAME, MARKET_URL, MARKET_STATUS,
    TOTAL_CONTRACTS, TOTAL_VOLUME, LAST_UPDATED
)
SELECT DISTINCT
    market_id, market_name, short_name, market_url, market_status,
    CASE WHEN contract_data IS NOT NULL THEN ARRAY_SIZE(contract_data) ELSE 0 END,
    0.00,
    extraction_timestamp
FROM %[2]s.PREDICTIT_RAW
WHERE market_id IS NOT NULL
QUALIFY ROW_NUMBER() OVER (PARTITION BY market_id ORDER BY extraction_timestamp DESC) = 1;`

const insertContractDetailsTmpl = `INSERT INTO %[1]s.CONTRACT_DETAILS (
    CONTRACT_ID, MARKET_ID, CONTRACT_NAME, CONTRACT_STATUS, LAST_TRADE_PRICE,
    BEST_BUY_YES_COST, BEST_SELL_YES_COST, BEST_BUY_NO_COST, BEST_SELL_NO_COST,
    LAST_CLOSE_PRICE, DISPLAY_ORDER, LAST_UPDATED
)
SELECT
    contract.value:id::INTEGER,
    raw.market_id,
    contract.value:name::VARCHAR,
    contract.value:status::VARCHAR,
    contract.value:lastTradePrice::DECIMAL(10,4),
    contract.value:bestBuyYesCost::DECIMAL(10,4),
    contract.value:bestSellYesCost::DECIMAL(10,4),
    contract.value:bestBuyNoCost::DECIMAL(10,4),
    contract.value:bestSellNoCost::DECIMAL(10,4),
    contract.value:lastClosePrice::DECIMAL(10,4),
    contract.value:displayOrder::INTEGER,
    raw.extraction_timestamp
FROM %[2]s.PREDICTIT_RAW raw,
LATERAL FLATTEN(input => raw.contract_data) contract
WHERE raw.market_id IS NOT NULL
QUALIFY ROW_NUMBER() OVER (PARTITION BY contract.value:id ORDER BY raw.extraction_timestamp DESC) = 1;`

const mergeDailyMetricsTmpl = `MERGE INTO %[1]s.DAILY_MARKET_METRICS AS target
USING (
    SELECT
        m.MARKET_ID,
        CURRENT_DATE() AS METRIC_DATE,
        COUNT(DISTINCT c.CONTRACT_ID) AS TOTAL_CONTRACTS,
        COALESCE(SUM(c.LAST_TRADE_PRICE), 0) AS TOTAL_VOLUME,
        COALESCE(AVG(c.LAST_TRADE_PRICE), 0) AS AVG_TRADE_PRICE,
        COALESCE(STDDEV(c.LAST_TRADE_PRICE), 0) AS PRICE_VOLATILITY
    FROM %[1]s.MARKET_SUMMARY m
    LEFT JOIN %[1]s.CONTRACT_DETAILS c ON m.MARKET_ID = c.MARKET_ID
    GROUP BY m.MARKET_ID
) AS source
ON target.METRIC_DATE = source.METRIC_DATE AND target.MARKET_ID = source.MARKET_ID
WHEN MATCHED THEN UPDATE SET
    target.TOTAL_CONTRACTS = source.TOTAL_CONTRACTS,
    target.TOTAL_VOLUME = source.TOTAL_VOLUME,
    target.AVG_TRADE_PRICE = source.AVG_TRADE_PRICE,
    target.PRICE_VOLATILITY = source.PRICE_VOLATILITY
WHEN NOT MATCHED THEN INSERT (
    MARKET_ID, METRIC_DATE, TOTAL_CONTRACTS, TOTAL_VOLUME, AVG_TRADE_PRICE, PRICE_VOLATILITY
) VALUES (
    source.MARKET_ID, source.METRIC_DATE, source.TOTAL_CONTRACTS, source.TOTAL_VOLUME,
    source.AVG_TRADE_PRICE, source.PRICE_VOLATILITY
);`
