package sqlstore

// Worksheets are stored as one row per sheet row; cells is a JSON array of
// strings. Row 0 is the header. The statements run unchanged on MySQL and
// SQLite.
var schemaSQL = []string{
	`CREATE TABLE IF NOT EXISTS worksheets (
  name       VARCHAR(191) NOT NULL PRIMARY KEY,
  created_at TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
	`CREATE TABLE IF NOT EXISTS worksheet_rows (
  sheet   VARCHAR(191) NOT NULL,
  row_num INTEGER      NOT NULL,
  cells   MEDIUMTEXT   NOT NULL,
  PRIMARY KEY (sheet, row_num)
)`,
}

const sheetExistsSQL = `SELECT COUNT(*) FROM worksheets WHERE name = ?`

const insertSheetSQL = `INSERT INTO worksheets (name) VALUES (?)`

const selectRowsSQL = `
SELECT cells
FROM worksheet_rows
WHERE sheet = ?
ORDER BY row_num`

// Overwrite starts at row 0 like a spreadsheet range update: rows past the
// written range are left alone.
const deleteRowsBelowSQL = `DELETE FROM worksheet_rows WHERE sheet = ? AND row_num < ?`

const insertRowSQL = `INSERT INTO worksheet_rows (sheet, row_num, cells) VALUES (?, ?, ?)`

const nextRowSQL = `SELECT COALESCE(MAX(row_num) + 1, 0) FROM worksheet_rows WHERE sheet = ?`
