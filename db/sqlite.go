package db

import (
	"database/sql"
	"errors"
	"time"

	"flightdelay/flights"
	_ "github.com/mattn/go-sqlite3"
)

var database *sql.DB

// InitDB opens the SQLite database and creates the schema
func InitDB(path string) error {
	var err error
	database, err = sql.Open("sqlite3", path)
	if err != nil {
		return err
	}

	query := `
    CREATE TABLE IF NOT EXISTS flights (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        carrier VARCHAR(64) NOT NULL,
        flight_type VARCHAR(1) NOT NULL,
        month INTEGER NOT NULL,
        scheduled_at DATETIME,
        operated_at DATETIME
    );
    CREATE TABLE IF NOT EXISTS predictions (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        carrier VARCHAR(64) NOT NULL,
        flight_type VARCHAR(1) NOT NULL,
        month INTEGER NOT NULL,
        predicted_label INTEGER NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );
    CREATE TABLE IF NOT EXISTS training_log (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        algorithm VARCHAR(50),
        accuracy REAL,
        precision REAL,
        recall REAL,
        trained_at DATETIME,
        data_points INTEGER
    );
    `

	_, err = database.Exec(query)
	return err
}

// CloseDB closes the database connection
func CloseDB() error {
	if database == nil {
		return nil
	}
	err := database.Close()
	database = nil
	return err
}

// SaveFlights ingests training records in one transaction
func SaveFlights(records []flights.Record) error {
	if database == nil {
		return errors.New("database not initialized")
	}
	tx, err := database.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`
        INSERT INTO flights (carrier, flight_type, month, scheduled_at, operated_at)
        VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		_, err := stmt.Exec(rec.Carrier, rec.FlightType, rec.Month,
			nullableTime(rec.ScheduledDeparture), nullableTime(rec.ActualDeparture))
		if err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// LoadFlights reads every ingested training record
func LoadFlights() ([]flights.Record, error) {
	if database == nil {
		return nil, errors.New("database not initialized")
	}
	rows, err := database.Query(`
        SELECT carrier, flight_type, month, scheduled_at, operated_at
        FROM flights
        ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []flights.Record
	for rows.Next() {
		var rec flights.Record
		var scheduled, operated sql.NullTime
		if err := rows.Scan(&rec.Carrier, &rec.FlightType, &rec.Month, &scheduled, &operated); err != nil {
			return nil, err
		}
		if scheduled.Valid {
			rec.ScheduledDeparture = scheduled.Time
		}
		if operated.Valid {
			rec.ActualDeparture = operated.Time
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SavePrediction appends one served prediction to the audit log
func SavePrediction(carrier, flightType string, month, label int) error {
	if database == nil {
		return errors.New("database not initialized")
	}
	_, err := database.Exec(`
        INSERT INTO predictions (carrier, flight_type, month, predicted_label)
        VALUES (?, ?, ?, ?)`,
		carrier, flightType, month, label)
	return err
}

// PredictionRow is one audit log entry
type PredictionRow struct {
	Carrier    string    `json:"carrier"`
	FlightType string    `json:"flight_type"`
	Month      int       `json:"month"`
	Label      int       `json:"label"`
	CreatedAt  time.Time `json:"created_at"`
}

// RecentPredictions returns the newest audit entries
func RecentPredictions(limit int) ([]PredictionRow, error) {
	if database == nil {
		return nil, errors.New("database not initialized")
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := database.Query(`
        SELECT carrier, flight_type, month, predicted_label, created_at
        FROM predictions
        ORDER BY id DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []PredictionRow
	for rows.Next() {
		var row PredictionRow
		if err := rows.Scan(&row.Carrier, &row.FlightType, &row.Month, &row.Label, &row.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// LogTraining records the outcome of one offline training run
func LogTraining(algorithm string, accuracy, precision, recall float64, dataPoints int) error {
	if database == nil {
		return errors.New("database not initialized")
	}
	_, err := database.Exec(`
        INSERT INTO training_log (algorithm, accuracy, precision, recall, trained_at, data_points)
        VALUES (?, ?, ?, ?, ?, ?)`,
		algorithm, accuracy, precision, recall, time.Now(), dataPoints)
	return err
}

func nullableTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}
