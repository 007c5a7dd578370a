package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jonas-Sn/Trabalho-Final/internal/config"
	"github.com/Jonas-Sn/Trabalho-Final/internal/db"
	"github.com/Jonas-Sn/Trabalho-Final/internal/scheduling"
)

// simulate hammers the booking API with concurrent traffic. Many workers
// aiming at a small provider/date/time pool makes slot conflicts frequent,
// which is the point: every booking attempt must end in exactly one of
// created or conflict, never a silent double booking.

type SimConfig struct {
	APIBaseURL   string
	Duration     time.Duration
	Workers      int
	RequestRatio float64 // patient self-service requests
	ApproveRatio float64 // staff approvals of collected appointments
	ReadRatio    float64 // availability reads
	DaySpread    int     // how many future days bookings land on
	PostgresDSN  string
}

type Provider struct {
	ID        string
	Specialty string
}

type DataPool struct {
	Patients  []string
	Providers []Provider
	Grid      []string

	mu           sync.RWMutex
	appointments []int64
}

func (dp *DataPool) AddAppointment(id int64) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.appointments = append(dp.appointments, id)
}

func (dp *DataPool) GetRandomAppointment(rng *rand.Rand) (int64, bool) {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	if len(dp.appointments) == 0 {
		return 0, false
	}
	return dp.appointments[rng.Intn(len(dp.appointments))], true
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Conflict  int64
	Error     int64
	Latencies []time.Duration
	mu        sync.Mutex
}

func (om *OperationMetrics) Record(latency time.Duration, success bool, conflict bool) {
	atomic.AddInt64(&om.Total, 1)
	if success {
		atomic.AddInt64(&om.Success, 1)
	} else if conflict {
		atomic.AddInt64(&om.Conflict, 1)
	} else {
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, min, max, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.Latencies) == 0 {
		return 0, 0, 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)

	sort.Slice(latencies, func(i, j int) bool {
		return latencies[i] < latencies[j]
	})

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	avg = sum / time.Duration(len(latencies))
	min = latencies[0]
	max = latencies[len(latencies)-1]

	p50Idx := len(latencies) * 50 / 100
	if p50Idx >= len(latencies) {
		p50Idx = len(latencies) - 1
	}
	p50 = latencies[p50Idx]

	p95Idx := len(latencies) * 95 / 100
	if p95Idx >= len(latencies) {
		p95Idx = len(latencies) - 1
	}
	p95 = latencies[p95Idx]

	return avg, min, max, p50, p95
}

type Metrics struct {
	Request      OperationMetrics
	Approve      OperationMetrics
	Availability OperationMetrics
}

type Simulator struct {
	config  SimConfig
	pool    *DataPool
	client  *resty.Client
	metrics Metrics
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("simulator starting")

	cfg := loadConfig()
	if err := validateConfig(cfg); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	log.Printf("config: duration=%s workers=%d request=%.2f approve=%.2f read=%.2f",
		cfg.Duration, cfg.Workers, cfg.RequestRatio, cfg.ApproveRatio, cfg.ReadRatio)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pgPool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pgPool.Close()

	dataPool, err := loadDataPool(ctx, pgPool)
	if err != nil {
		log.Fatalf("load data pool: %v", err)
	}

	log.Printf("loaded: %d patients, %d providers, %d grid times",
		len(dataPool.Patients), len(dataPool.Providers), len(dataPool.Grid))

	sim := &Simulator{
		config: cfg,
		pool:   dataPool,
		client: resty.New().
			SetBaseURL(cfg.APIBaseURL).
			SetTimeout(10 * time.Second),
	}

	sim.Run()
	sim.PrintReport()
}

func loadConfig() SimConfig {
	baseCfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load base config: %v", err)
	}

	cfg := SimConfig{
		APIBaseURL:   getEnv("SIM_API_BASE_URL", "http://localhost:8080"),
		Duration:     getDuration("SIM_DURATION", 30*time.Second),
		Workers:      getInt("SIM_WORKERS", 10),
		RequestRatio: getFloat("SIM_REQUEST_RATIO", 0.5),
		ApproveRatio: getFloat("SIM_APPROVE_RATIO", 0.2),
		ReadRatio:    getFloat("SIM_READ_RATIO", 0.3),
		DaySpread:    getInt("SIM_DAY_SPREAD", 3),
		PostgresDSN:  baseCfg.PostgresDSN,
	}

	total := cfg.RequestRatio + cfg.ApproveRatio + cfg.ReadRatio
	if total > 0 {
		cfg.RequestRatio /= total
		cfg.ApproveRatio /= total
		cfg.ReadRatio /= total
	}

	return cfg
}

func validateConfig(cfg SimConfig) error {
	if cfg.PostgresDSN == "" {
		return fmt.Errorf("POSTGRES_DSN is required (set in .env or environment)")
	}
	if cfg.Workers <= 0 {
		return fmt.Errorf("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("SIM_DURATION must be > 0")
	}
	if cfg.DaySpread <= 0 {
		return fmt.Errorf("SIM_DAY_SPREAD must be > 0")
	}
	return nil
}

func loadDataPool(ctx context.Context, pool *pgxpool.Pool) (*DataPool, error) {
	dataPool := &DataPool{Grid: scheduling.DefaultGrid().Times()}

	rows, err := pool.Query(ctx, `
		SELECT id FROM persons WHERE role = 'patient' LIMIT 500
	`)
	if err != nil {
		return nil, fmt.Errorf("load patients: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		dataPool.Patients = append(dataPool.Patients, id)
	}

	rows, err = pool.Query(ctx, `
		SELECT id, COALESCE(specialty, '') FROM persons WHERE role = 'provider' LIMIT 50
	`)
	if err != nil {
		return nil, fmt.Errorf("load providers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p Provider
		if err := rows.Scan(&p.ID, &p.Specialty); err != nil {
			return nil, err
		}
		dataPool.Providers = append(dataPool.Providers, p)
	}

	if len(dataPool.Patients) == 0 {
		return nil, fmt.Errorf("no patients loaded, run cmd/seed first")
	}
	if len(dataPool.Providers) == 0 {
		return nil, fmt.Errorf("no providers loaded, run cmd/seed first")
	}

	return dataPool, nil
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	log.Printf("starting simulation for %s with %d workers", s.config.Duration, s.config.Workers)

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	log.Println("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

	for {
		select {
		case <-ctx.Done():
			return
		default:
			r := rng.Float64()
			switch {
			case r < s.config.RequestRatio:
				s.doRequest(ctx, rng)
			case r < s.config.RequestRatio+s.config.ApproveRatio:
				s.doApprove(ctx, rng)
			default:
				s.doAvailability(ctx, rng)
			}
		}
	}
}

func (s *Simulator) randomSlot(rng *rand.Rand) (provider Provider, date, timeOfDay string) {
	provider = s.pool.Providers[rng.Intn(len(s.pool.Providers))]
	date = time.Now().AddDate(0, 0, 1+rng.Intn(s.config.DaySpread)).Format(scheduling.DateLayout)
	timeOfDay = s.pool.Grid[rng.Intn(len(s.pool.Grid))]
	return
}

func (s *Simulator) doRequest(ctx context.Context, rng *rand.Rand) {
	provider, date, timeOfDay := s.randomSlot(rng)
	patientID := s.pool.Patients[rng.Intn(len(s.pool.Patients))]

	var created struct {
		ID int64 `json:"id"`
	}

	start := time.Now()
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"patient_id":  patientID,
			"specialty":   provider.Specialty,
			"provider_id": provider.ID,
			"date":        date,
			"time":        timeOfDay,
		}).
		SetResult(&created).
		Post("/appointments/request")
	latency := time.Since(start)

	success := false
	conflict := false

	if err == nil {
		switch resp.StatusCode() {
		case http.StatusCreated:
			success = true
			if created.ID != 0 {
				s.pool.AddAppointment(created.ID)
			}
		case http.StatusConflict:
			conflict = true
		}
	}

	s.metrics.Request.Record(latency, success, conflict)
}

func (s *Simulator) doApprove(ctx context.Context, rng *rand.Rand) {
	apptID, ok := s.pool.GetRandomAppointment(rng)
	if !ok {
		return
	}

	start := time.Now()
	resp, err := s.client.R().
		SetContext(ctx).
		Post(fmt.Sprintf("/appointments/%d/approve", apptID))
	latency := time.Since(start)

	success := false
	conflict := false

	if err == nil {
		switch resp.StatusCode() {
		case http.StatusOK:
			success = true
		case http.StatusConflict:
			conflict = true
		}
	}

	s.metrics.Approve.Record(latency, success, conflict)
}

func (s *Simulator) doAvailability(ctx context.Context, rng *rand.Rand) {
	provider, date, _ := s.randomSlot(rng)

	start := time.Now()
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("date", date).
		Get(fmt.Sprintf("/providers/%s/slots", provider.ID))
	latency := time.Since(start)

	success := err == nil && resp.StatusCode() == http.StatusOK

	s.metrics.Availability.Record(latency, success, false)
}

func (s *Simulator) PrintReport() {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Workers: %d\n", s.config.Workers)
	fmt.Println()

	printOperationReport("Request", &s.metrics.Request)
	printOperationReport("Approve", &s.metrics.Approve)
	printOperationReport("Availability", &s.metrics.Availability)
}

func printOperationReport(name string, om *OperationMetrics) {
	total := atomic.LoadInt64(&om.Total)
	if total == 0 {
		return
	}

	success := atomic.LoadInt64(&om.Success)
	conflict := atomic.LoadInt64(&om.Conflict)
	errCount := atomic.LoadInt64(&om.Error)

	avg, min, max, p50, p95 := om.Stats()

	fmt.Printf("%s:\n", name)
	fmt.Printf("  Total: %d\n", total)
	fmt.Printf("  Success: %d (%.1f%%)\n", success, float64(success)/float64(total)*100)
	if conflict > 0 {
		fmt.Printf("  Conflicts: %d (%.1f%%)\n", conflict, float64(conflict)/float64(total)*100)
	}
	if errCount > 0 {
		fmt.Printf("  Errors: %d (%.1f%%)\n", errCount, float64(errCount)/float64(total)*100)
	}
	fmt.Printf("  Latency: avg=%s min=%s max=%s p50=%s p95=%s\n",
		avg.Round(time.Millisecond), min.Round(time.Millisecond), max.Round(time.Millisecond),
		p50.Round(time.Millisecond), p95.Round(time.Millisecond))
	fmt.Println()
}

// Helper functions

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
