package db

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	_ "github.com/go-sql-driver/mysql"
)

// Connect returns a MariaDB connection using env vars.
func Connect() (*sql.DB, error) {
	user := os.Getenv("DB_USER")
	pass := os.Getenv("DB_PASS")
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	name := os.Getenv("DB_NAME")
	if host == "" {
		host = "127.0.0.1"
	}
	if port == "" {
		port = "3306"
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4,utf8", user, pass, host, port, name)
	return sql.Open("mysql", dsn)
}

// EnsureSchema creates required tables if not exist.
// La lógica de negocio CRUD (venta de pasajes, multas, transferencias de
// saldo) vive en procedimientos almacenados administrados fuera de este
// repositorio; aquí solo se garantizan las tablas de referencia que el
// motor lee.
func EnsureSchema(db *sql.DB) error {
	if skip := strings.TrimSpace(os.Getenv("DB_SKIP_SCHEMA")); strings.EqualFold(skip, "true") || skip == "1" {
		log.Printf("EnsureSchema: skipped (DB_SKIP_SCHEMA=%q)", skip)
		return nil
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			username VARCHAR(50) NOT NULL UNIQUE,
			email VARCHAR(255) NOT NULL UNIQUE,
			name VARCHAR(100) NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			role ENUM('dispatcher','operator') NOT NULL DEFAULT 'operator',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,

		`CREATE TABLE IF NOT EXISTS transport_types (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(50) NOT NULL UNIQUE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,

		`CREATE TABLE IF NOT EXISTS stops (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			longitude DOUBLE NOT NULL,
			latitude DOUBLE NOT NULL
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,

		`CREATE TABLE IF NOT EXISTS routes (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			transport_type_id BIGINT NOT NULL,
			number VARCHAR(20) NOT NULL,
			direction ENUM('forward','reverse') NOT NULL DEFAULT 'forward',
			active TINYINT(1) NOT NULL DEFAULT 1,
			paired_route_id BIGINT NULL,
			FOREIGN KEY (transport_type_id) REFERENCES transport_types(id),
			FOREIGN KEY (paired_route_id) REFERENCES routes(id) ON DELETE SET NULL
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,

		// Secuencia de puntos de polilínea como lista enlazada por filas:
		// prev/next únicos por ruta, NULL marca cabeza y cola
		`CREATE TABLE IF NOT EXISTS route_points (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			route_id BIGINT NOT NULL,
			longitude DOUBLE NOT NULL,
			latitude DOUBLE NOT NULL,
			prev_point_id BIGINT NULL,
			next_point_id BIGINT NULL,
			FOREIGN KEY (route_id) REFERENCES routes(id) ON DELETE CASCADE,
			UNIQUE KEY uq_route_points_prev (route_id, prev_point_id),
			UNIQUE KEY uq_route_points_next (route_id, next_point_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,

		`CREATE TABLE IF NOT EXISTS route_stops (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			route_id BIGINT NOT NULL,
			stop_id BIGINT NOT NULL,
			prev_route_stop_id BIGINT NULL,
			next_route_stop_id BIGINT NULL,
			distance_to_next_km DOUBLE NULL,
			FOREIGN KEY (route_id) REFERENCES routes(id) ON DELETE CASCADE,
			FOREIGN KEY (stop_id) REFERENCES stops(id),
			UNIQUE KEY uq_route_stops_prev (route_id, prev_route_stop_id),
			UNIQUE KEY uq_route_stops_next (route_id, next_route_stop_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,

		`CREATE TABLE IF NOT EXISTS schedules (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			route_id BIGINT NOT NULL,
			work_start_time TIME NOT NULL,
			work_end_time TIME NOT NULL,
			interval_min INT NOT NULL,
			FOREIGN KEY (route_id) REFERENCES routes(id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,

		`CREATE TABLE IF NOT EXISTS vehicles (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			plate VARCHAR(20) NOT NULL UNIQUE,
			transport_type_id BIGINT NOT NULL,
			capacity INT NOT NULL DEFAULT 0,
			active TINYINT(1) NOT NULL DEFAULT 1,
			FOREIGN KEY (transport_type_id) REFERENCES transport_types(id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,

		`CREATE TABLE IF NOT EXISTS drivers (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			full_name VARCHAR(255) NOT NULL,
			license VARCHAR(50) NOT NULL,
			active TINYINT(1) NOT NULL DEFAULT 1
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,

		`CREATE TABLE IF NOT EXISTS trips (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			route_id BIGINT NOT NULL,
			vehicle_id BIGINT NOT NULL,
			driver_id BIGINT NOT NULL,
			planned_start TIMESTAMP NOT NULL,
			planned_end TIMESTAMP NULL,
			actual_start TIMESTAMP NULL,
			actual_end TIMESTAMP NULL,
			passenger_count INT NOT NULL DEFAULT 0,
			FOREIGN KEY (route_id) REFERENCES routes(id),
			FOREIGN KEY (vehicle_id) REFERENCES vehicles(id),
			FOREIGN KEY (driver_id) REFERENCES drivers(id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	if _, err := db.Exec(`CREATE INDEX idx_stops_lonlat ON stops(longitude, latitude);`); err != nil {
		errMsg := strings.ToLower(err.Error())
		if strings.Contains(errMsg, "duplicate") {
			// index already exists, nothing to do
		} else if strings.Contains(errMsg, "permission denied") {
			log.Printf("EnsureSchema: unable to create stops index (permission denied): %v", err)
		} else {
			return err
		}
	}

	return nil
}
