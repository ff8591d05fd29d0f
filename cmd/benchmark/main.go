package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Config holds the benchmark settings
var (
	targetURL   string
	concurrency int
	duration    time.Duration
	workload    string
	email       string
	password    string
)

// Metrics
var (
	totalRequests uint64
	readsOK       uint64 // 200 list pages
	created       uint64 // 303 redirects after create
	rejected      uint64 // 422 validation rejections
	failOther     uint64
)

func init() {
	flag.StringVar(&targetURL, "url", "http://localhost:8080", "API Base URL")
	flag.IntVar(&concurrency, "workers", 10, "Number of concurrent workers")
	flag.DurationVar(&duration, "duration", 30*time.Second, "Test duration")
	flag.StringVar(&workload, "workload", "mixed", "Workload type: read | write | mixed")
	flag.StringVar(&email, "email", "user@acmecorp.test", "Login email")
	flag.StringVar(&password, "password", "123456", "Login password")
}

func main() {
	flag.Parse()
	log.Printf("Starting Benchmark: %s | Workers: %d | Duration: %s", workload, concurrency, duration)

	cookie, err := login()
	if err != nil {
		log.Fatalf("Login failed: %v", err)
	}

	customers, err := fetchCustomerIDs(cookie)
	if err != nil {
		log.Fatalf("Fetching customers failed: %v", err)
	}
	if len(customers) == 0 {
		log.Fatal("No customers seeded; run cmd/seeder first")
	}

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(concurrency)

	for i := 0; i < concurrency; i++ {
		go worker(&wg, start, cookie, customers)
	}

	wg.Wait()
	printResults(time.Since(start))
}

func login() (*http.Cookie, error) {
	form := url.Values{"email": {email}, "password": {password}}
	client := &http.Client{
		Timeout: 5 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	resp, err := client.PostForm(targetURL+"/login", form)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		return nil, fmt.Errorf("unexpected login status %d", resp.StatusCode)
	}
	for _, c := range resp.Cookies() {
		if c.Name == "session_token" {
			return c, nil
		}
	}
	return nil, fmt.Errorf("no session cookie in login response")
}

func fetchCustomerIDs(cookie *http.Cookie) ([]string, error) {
	req, _ := http.NewRequest("GET", targetURL+"/dashboard/customers", nil)
	req.AddCookie(cookie)
	resp, err := (&http.Client{Timeout: 5 * time.Second}).Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var customers []struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&customers); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(customers))
	for _, c := range customers {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

func worker(wg *sync.WaitGroup, start time.Time, cookie *http.Cookie, customers []string) {
	defer wg.Done()
	client := &http.Client{
		Timeout: 5 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	for time.Since(start) < duration {
		var req *http.Request
		if pickRead() {
			page := rand.Intn(5) + 1
			req, _ = http.NewRequest("GET", fmt.Sprintf("%s/dashboard/invoices?page=%d", targetURL, page), nil)
		} else {
			form := url.Values{
				"customerId": {customers[rand.Intn(len(customers))]},
				"amount":     {fmt.Sprintf("%d.%02d", rand.Intn(999)+1, rand.Intn(100))},
				"status":     {[]string{"pending", "paid"}[rand.Intn(2)]},
			}
			req, _ = http.NewRequest("POST", targetURL+"/dashboard/invoices", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
		req.AddCookie(cookie)

		resp, err := client.Do(req)
		if err != nil {
			atomic.AddUint64(&failOther, 1)
			continue
		}

		atomic.AddUint64(&totalRequests, 1)
		switch resp.StatusCode {
		case 200, 404:
			atomic.AddUint64(&readsOK, 1)
		case 303:
			atomic.AddUint64(&created, 1)
		case 422:
			atomic.AddUint64(&rejected, 1)
		default:
			atomic.AddUint64(&failOther, 1)
		}
		resp.Body.Close()
	}
}

func pickRead() bool {
	switch workload {
	case "read":
		return true
	case "write":
		return false
	default:
		return rand.Float32() < 0.8
	}
}

func printResults(d time.Duration) {
	total := atomic.LoadUint64(&totalRequests)
	tps := float64(total) / d.Seconds()

	results := map[string]interface{}{
		"workload":       workload,
		"duration_sec":   d.Seconds(),
		"total_requests": total,
		"throughput_tps": tps,
		"reads_ok":       atomic.LoadUint64(&readsOK),
		"created":        atomic.LoadUint64(&created),
		"rejected_422":   atomic.LoadUint64(&rejected),
		"errors":         atomic.LoadUint64(&failOther),
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(results)

	filename := fmt.Sprintf("results_%s.json", workload)
	file, _ := os.Create(filename)
	defer file.Close()
	json.NewEncoder(file).Encode(results)
}
