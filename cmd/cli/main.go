package main

import (
	"bufio"
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	appdb "github.com/yourorg/transitcl/internal/db"
)

func main() {
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Println("==== TransitCL CLI ====")
		fmt.Println("1) Health check API")
		fmt.Println("2) Seed database (sample network + demo user)")
		fmt.Println("3) Plan test itinerary")
		fmt.Println("4) Exit")
		fmt.Print("Select option: ")
		choice, _ := reader.ReadString('\n')
		choice = strings.TrimSpace(choice)
		switch choice {
		case "1":
			doHealthCheck()
		case "2":
			doSeed()
		case "3":
			doPlanItinerary()
		case "4":
			fmt.Println("Bye")
			return
		default:
			fmt.Println("Invalid option")
		}
		fmt.Println()
	}
}

func baseURL() string {
	base := os.Getenv("BASE_URL")
	if base == "" {
		base = "http://127.0.0.1:8080"
	}
	return strings.TrimRight(base, "/")
}

func doHealthCheck() {
	resp, err := http.Get(baseURL() + "/api/health")
	if err != nil {
		fmt.Println("Health: ERROR:", err)
		return
	}
	defer resp.Body.Close()
	fmt.Println("Health status:", resp.Status)
}

func doSeed() {
	db, err := appdb.Connect()
	if err != nil {
		log.Println("DB connect error:", err)
		return
	}
	defer db.Close()
	if err := appdb.EnsureSchema(db); err != nil {
		log.Println("Ensure schema error:", err)
		return
	}
	seedUser(db)
	seedNetwork(db)
}

// doPlanItinerary lanza una consulta de ejemplo contra el planner
// usando dos puntos del centro de Santiago.
func doPlanItinerary() {
	body, _ := json.Marshal(map[string]interface{}{
		"origin_lon": -70.6506,
		"origin_lat": -33.4372,
		"dest_lon":   -70.6350,
		"dest_lat":   -33.4400,
		"radius_m":   800,
		"now":        time.Now().Format("15:04"),
	})
	resp, err := http.Post(baseURL()+"/api/planner/itinerary", "application/json", bytes.NewReader(body))
	if err != nil {
		fmt.Println("Planner: ERROR:", err)
		return
	}
	defer resp.Body.Close()
	fmt.Println("Planner status:", resp.Status)
	out, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	fmt.Println(string(out))
}

func seedUser(db *sql.DB) {
	// Creates a sample dispatcher if not exists
	username := "demo"
	email := "demo@example.com"
	name := "Demo"
	password := "demo1234"
	var exists int
	_ = db.QueryRow("SELECT 1 FROM users WHERE username = ?", username).Scan(&exists)
	if exists == 1 {
		fmt.Println("Seed: user 'demo' already exists")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Println("Seed: bcrypt error:", err)
		return
	}
	_, err = db.Exec("INSERT INTO users (username,email,name,password_hash,role) VALUES (?,?,?,?,'dispatcher')",
		username, email, name, string(hash))
	if err != nil {
		fmt.Println("Seed: insert error:", err)
		return
	}
	fmt.Println("Seed: created dispatcher 'demo' with password 'demo1234'")
}

// seedNetwork crea una red mínima: un tipo de transporte, tres
// paraderos por la Alameda, una ruta con polilínea y secuencia
// enlazada, y un horario. Suficiente para probar el planner de punta
// a punta.
func seedNetwork(db *sql.DB) {
	var exists int
	_ = db.QueryRow("SELECT 1 FROM routes WHERE number = '221' LIMIT 1").Scan(&exists)
	if exists == 1 {
		fmt.Println("Seed: sample network already exists")
		return
	}

	res, err := db.Exec("INSERT INTO transport_types (name) VALUES ('bus')")
	if err != nil {
		fmt.Println("Seed: transport type error:", err)
		return
	}
	ttID, _ := res.LastInsertId()

	stops := []struct {
		name     string
		lon, lat float64
	}{
		{"Plaza de Armas", -70.6506, -33.4372},
		{"Santa Lucía", -70.6440, -33.4400},
		{"Baquedano", -70.6350, -33.4368},
	}
	stopIDs := make([]int64, len(stops))
	for i, s := range stops {
		res, err := db.Exec("INSERT INTO stops (name, longitude, latitude) VALUES (?,?,?)", s.name, s.lon, s.lat)
		if err != nil {
			fmt.Println("Seed: stop error:", err)
			return
		}
		stopIDs[i], _ = res.LastInsertId()
	}

	res, err = db.Exec(`INSERT INTO routes (transport_type_id, number, direction, active) VALUES (?, '221', 'forward', 1)`, ttID)
	if err != nil {
		fmt.Println("Seed: route error:", err)
		return
	}
	routeID, _ := res.LastInsertId()

	// Polilínea siguiendo los tres paraderos
	pointIDs := make([]int64, len(stops))
	for i, s := range stops {
		res, err := db.Exec("INSERT INTO route_points (route_id, longitude, latitude) VALUES (?,?,?)", routeID, s.lon, s.lat)
		if err != nil {
			fmt.Println("Seed: point error:", err)
			return
		}
		pointIDs[i], _ = res.LastInsertId()
	}
	linkChain(db, "route_points", "prev_point_id", "next_point_id", pointIDs)

	rsIDs := make([]int64, len(stopIDs))
	for i, sid := range stopIDs {
		res, err := db.Exec("INSERT INTO route_stops (route_id, stop_id) VALUES (?,?)", routeID, sid)
		if err != nil {
			fmt.Println("Seed: route stop error:", err)
			return
		}
		rsIDs[i], _ = res.LastInsertId()
	}
	linkChain(db, "route_stops", "prev_route_stop_id", "next_route_stop_id", rsIDs)

	if _, err := db.Exec(`INSERT INTO schedules (route_id, work_start_time, work_end_time, interval_min)
		VALUES (?, '06:30:00', '22:30:00', 10)`, routeID); err != nil {
		fmt.Println("Seed: schedule error:", err)
		return
	}

	fmt.Printf("Seed: created route 221 (id=%d) with %d stops\n", routeID, len(stopIDs))
}

// linkChain enlaza filas consecutivas vía sus columnas prev/next
func linkChain(db *sql.DB, table, prevCol, nextCol string, ids []int64) {
	for i, id := range ids {
		if i > 0 {
			if _, err := db.Exec(fmt.Sprintf("UPDATE %s SET %s = ? WHERE id = ?", table, prevCol), ids[i-1], id); err != nil {
				fmt.Println("Seed: link error:", err)
			}
		}
		if i < len(ids)-1 {
			if _, err := db.Exec(fmt.Sprintf("UPDATE %s SET %s = ? WHERE id = ?", table, nextCol), ids[i+1], id); err != nil {
				fmt.Println("Seed: link error:", err)
			}
		}
	}
}
