// README: Check catalogue for the runner: environment, catalog, auth, quotes, booking race and load.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"carrental/internal/modules/user"
)

const (
	statusPass = "PASS"
	statusFail = "FAIL"
	statusSkip = "SKIP"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
	token string
}

type Result struct {
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))
	for _, tc := range tests {
		res := tc.Run(ctx, r)
		results = append(results, res)
		fmt.Printf("%-5s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}
	return results
}

// window returns a rental range far enough ahead that no real booking is likely to
// overlap it.
func window(offsetDays, length int) (string, string) {
	start := time.Now().UTC().AddDate(2, 0, offsetDays)
	return start.Format("2006-01-02"), start.AddDate(0, 0, length).Format("2006-01-02")
}

func quoteBody(start, end string, age int) map[string]any {
	return map[string]any{
		"start_date":      start,
		"end_date":        end,
		"category":        "C",
		"driver_age":      age,
		"extra_drivers":   0,
		"extra_insurance": false,
		"km_per_day":      200,
	}
}

func card() map[string]any {
	return map[string]any{"FullName": "Bench Runner", "CardNumber": "4111111111111111", "CVV": "123", "Price": 100}
}

func (r *Runner) cases() []TestCase {
	start, end := window(0, 5)
	return []TestCase{
		{
			Name: "Env: Postgres connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: statusSkip, Note: "dsn not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.db.Ping(ctx); err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				return Result{Status: statusPass}
			},
		},
		{
			Name: "Env: Redis connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: statusSkip, Note: "redis not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				return Result{Status: statusPass}
			},
		},
		{
			Name: "Migration: apply (optional)",
			Run: func(ctx context.Context, r *Runner) Result {
				if !r.cfg.ApplyMigration {
					return Result{Status: statusSkip, Note: "apply-migration=false"}
				}
				if r.db == nil {
					return Result{Status: statusFail, Note: "db not configured"}
				}
				sql, err := os.ReadFile(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				for _, s := range splitSQL(string(sql)) {
					if _, err := r.db.Exec(ctx, s); err != nil {
						return Result{Status: statusFail, Note: err.Error()}
					}
				}
				return Result{Status: statusPass}
			},
		},
		{
			Name: "Migration: tables exist",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: statusSkip, Note: "db not configured"}
				}
				tables, err := extractTables(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				for _, t := range tables {
					var exists bool
					err := r.db.QueryRow(ctx,
						"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)",
						t,
					).Scan(&exists)
					if err != nil {
						return Result{Status: statusFail, Note: err.Error()}
					}
					if !exists {
						return Result{Status: statusFail, Note: "missing table: " + t}
					}
				}
				return Result{Status: statusPass}
			},
		},
		{
			Name: "Seed: bench customer",
			Run:  seedCustomer,
		},

		httpCase("API: health", http.MethodGet, "/health", nil, false, http.StatusOK),
		httpCase("Catalog: categories", http.MethodGet, "/api/categories", nil, false, http.StatusOK),
		httpCase("Catalog: vehicles", http.MethodGet, "/api/vehicles", nil, false, http.StatusOK),
		httpCase("Catalog: vehicles filtered", http.MethodGet, "/api/vehicles?category=A&category=C&brand=Fiat", nil, false, http.StatusOK),
		httpCase("Catalog: unknown category -> 400", http.MethodGet, "/api/vehicles?category=Z", nil, false, http.StatusBadRequest),
		httpCase("Catalog: brands", http.MethodGet, "/api/brands", nil, false, http.StatusOK),
		{
			Name: "Cache: fleet listing stored in redis",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: statusSkip, Note: "redis not configured"}
				}
				n, err := r.redis.Exists(ctx, "fleet:vehicles").Result()
				if err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				if n == 0 {
					return Result{Status: statusFail, Note: "fleet:vehicles missing after listing"}
				}
				return Result{Status: statusPass}
			},
		},

		{
			Name: "Auth: protected route without token -> 401",
			Run: func(ctx context.Context, r *Runner) Result {
				status, _, lat, err := r.do(ctx, http.MethodGet, "/api/rentals", nil, false)
				return expect(status, lat, err, http.StatusUnauthorized)
			},
		},
		{
			Name: "Auth: login",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.cfg.Email == "" {
					return Result{Status: statusSkip, Note: "no bench credentials"}
				}
				status, body, lat, err := r.do(ctx, http.MethodPost, "/api/login",
					map[string]string{"email": r.cfg.Email, "password": r.cfg.Password}, false)
				if err != nil || status != http.StatusOK {
					return expect(status, lat, err, http.StatusOK)
				}
				var sess struct {
					Token string `json:"token"`
				}
				if err := json.Unmarshal(body, &sess); err != nil || sess.Token == "" {
					return Result{Status: statusFail, Latency: lat, Note: "no token in login response"}
				}
				r.token = sess.Token
				return Result{Status: statusPass, Latency: lat}
			},
		},
		httpCase("Auth: login wrong format -> 422", http.MethodPost, "/api/login",
			map[string]string{"email": "not-an-email", "password": "x"}, false, http.StatusUnprocessableEntity),

		httpCase("Availability: free cars", http.MethodGet, "/api/freeCar?startDay="+start+"&endDay="+end, nil, true, http.StatusOK),
		httpCase("Availability: malformed date -> 400", http.MethodGet, "/api/freeCar?startDay=01/01/2030&endDay="+end, nil, true, http.StatusBadRequest),
		httpCase("Quote: valid configuration", http.MethodPost, "/api/quotes", quoteBody(start, end, 30), true, http.StatusOK),
		httpCase("Quote: underage driver -> 400", http.MethodPost, "/api/quotes", quoteBody(start, end, 17), true, http.StatusBadRequest),
		httpCase("Payment: valid card -> 201", http.MethodPost, "/api/payment", card(), true, http.StatusCreated),
		httpCase("Payment: short CVV -> 422", http.MethodPost, "/api/payment",
			map[string]any{"FullName": "Bench Runner", "CardNumber": "4111111111111111", "CVV": "12", "Price": 100}, true, http.StatusUnprocessableEntity),

		{
			Name: "Race: concurrent bookings never double-book a car",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.token == "" {
					return Result{Status: statusSkip, Note: "not logged in"}
				}
				return concurrentBookings(ctx, r)
			},
		},
		{
			Name: "Perf: quote load",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.token == "" {
					return Result{Status: statusSkip, Note: "not logged in"}
				}
				return perfLoad(ctx, r, "/api/quotes", quoteBody(start, end, 30))
			},
		},
	}
}

func (r *Runner) do(ctx context.Context, method, path string, body any, auth bool) (int, []byte, time.Duration, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, 0, err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.cfg.BaseURL+path, rd)
	if err != nil {
		return 0, nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if auth {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
	start := time.Now()
	resp, err := r.httpc.Do(req)
	if err != nil {
		return 0, nil, 0, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	return resp.StatusCode, b, time.Since(start), err
}

func expect(status int, latency time.Duration, err error, want int) Result {
	if err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	if status != want {
		return Result{Status: statusFail, Latency: latency, Note: fmt.Sprintf("status=%d want=%d", status, want)}
	}
	return Result{Status: statusPass, Latency: latency}
}

func httpCase(name, method, path string, body any, auth bool, want int) TestCase {
	return TestCase{
		Name: name,
		Run: func(ctx context.Context, r *Runner) Result {
			if auth && r.token == "" {
				return Result{Status: statusSkip, Note: "not logged in"}
			}
			status, _, lat, err := r.do(ctx, method, path, body, auth)
			return expect(status, lat, err, want)
		},
	}
}

// seedCustomer upserts the bench account so the login check has a known password.
func seedCustomer(ctx context.Context, r *Runner) Result {
	if !r.cfg.SeedUser {
		return Result{Status: statusSkip, Note: "seed-user=false"}
	}
	if r.db == nil || r.cfg.Email == "" || r.cfg.Password == "" {
		return Result{Status: statusSkip, Note: "needs dsn, email and password"}
	}
	hash, err := user.HashPassword(r.cfg.Password)
	if err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO users (name, email, password_hash) VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash`,
		"Bench Runner", r.cfg.Email, hash)
	if err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	return Result{Status: statusPass}
}

// concurrentBookings fires identical bookings at once, checks that no car ended up
// with overlapping rentals and cancels whatever was booked.
func concurrentBookings(ctx context.Context, r *Runner) Result {
	start, end := window(30, 3)
	body := quoteBody(start, end, 30)
	body["payment"] = card()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created []int64
		other   int
	)
	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, b, _, err := r.do(ctx, http.MethodPost, "/api/rentals", body, true)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				other++
			case status == http.StatusCreated:
				var rent struct {
					ID int64 `json:"id"`
				}
				if json.Unmarshal(b, &rent) == nil {
					created = append(created, rent.ID)
				}
			case status != http.StatusConflict:
				other++
			}
		}()
	}
	wg.Wait()

	res := Result{Status: statusPass, Note: fmt.Sprintf("booked=%d unexpected=%d", len(created), other)}
	if other > 0 {
		res.Status = statusFail
	}
	if r.db != nil {
		var overlaps int
		err := r.db.QueryRow(ctx, `
			SELECT COUNT(*) FROM rentals a JOIN rentals b
			  ON a.car_id = b.car_id AND a.id < b.id
			 AND a.end_date > b.start_date AND a.start_date < b.end_date`).Scan(&overlaps)
		if err != nil {
			res.Status, res.Note = statusFail, err.Error()
		} else if overlaps > 0 {
			res.Status, res.Note = statusFail, fmt.Sprintf("%d overlapping rental pairs", overlaps)
		}
	}

	for _, id := range created {
		_, _, _, _ = r.do(ctx, http.MethodDelete, fmt.Sprintf("/api/rentals/%d", id), nil, true)
	}
	return res
}

func perfLoad(ctx context.Context, r *Runner, path string, payload any) Result {
	deadline := time.Now().Add(r.cfg.Duration)
	var (
		count    int64
		errCount int64
		mu       sync.Mutex
		wg       sync.WaitGroup
	)

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(deadline) && ctx.Err() == nil {
				status, _, _, err := r.do(ctx, http.MethodPost, path, payload, true)
				mu.Lock()
				if err != nil || status != http.StatusOK {
					errCount++
				} else {
					count++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: statusFail, Note: "no requests completed"}
	}
	rps := float64(count) / r.cfg.Duration.Seconds()
	return Result{Status: statusPass, Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount)}
}

func extractTables(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	re := regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)
	matches := re.FindAllStringSubmatch(string(b), -1)
	tables := make([]string, 0, len(matches))
	for _, m := range matches {
		tables = append(tables, m[1])
	}
	return tables, nil
}

func splitSQL(sql string) []string {
	lines := strings.Split(sql, "\n")
	filtered := make([]string, 0, len(lines))
	for _, line := range lines {
		l := strings.TrimSpace(line)
		if strings.HasPrefix(l, "--") || l == "" {
			continue
		}
		filtered = append(filtered, line)
	}
	parts := strings.Split(strings.Join(filtered, "\n"), ";")
	stmts := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}
