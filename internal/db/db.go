package db

import (
    "database/sql"
    "time"

    _ "github.com/lib/pq"
)

func Connect(connString string) (*sql.DB, error) {
    db, err := sql.Open("postgres", connString)
    if err != nil {
        return nil, err
    }

    db.SetMaxOpenConns(10)
    db.SetConnMaxIdleTime(5 * time.Minute)

    err = db.Ping()
    if err != nil {
        return nil, err
    }

    return db, nil
}
