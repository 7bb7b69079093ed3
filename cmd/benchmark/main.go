package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
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
)

// Metrics
var (
	totalRequests uint64
	settled       uint64 // Purchases that went through
	rejected400   uint64 // Out of stock / out of funds
	failOther     uint64
)

func init() {
	flag.StringVar(&targetURL, "url", "http://localhost:8080", "API Base URL")
	flag.IntVar(&concurrency, "workers", 10, "Number of concurrent workers")
	flag.DurationVar(&duration, "duration", 30*time.Second, "Test duration")
	flag.StringVar(&workload, "workload", "uniform", "Workload type: uniform | hotspot")
}

type buyer struct {
	token     string
	productID string
}

func main() {
	flag.Parse()
	log.Printf("Starting Benchmark: %s | Workers: %d | Duration: %s", workload, concurrency, duration)

	client := &http.Client{Timeout: 5 * time.Second}
	buyers, err := setup(client)
	if err != nil {
		log.Fatalf("Setup failed: %v", err)
	}

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(concurrency)

	for i := 0; i < concurrency; i++ {
		go worker(&wg, start, buyers[i])
	}

	wg.Wait()
	printResults(time.Since(start))
}

// setup registers one seller, the product catalog and one buyer per worker,
// funds each buyer, and returns ready-to-use tokens.
func setup(client *http.Client) ([]buyer, error) {
	run := time.Now().UnixNano()

	sellerToken, _, err := register(client, fmt.Sprintf("bench-seller-%d", run), "seller")
	if err != nil {
		return nil, err
	}

	// Hotspot: every worker hammers one product. Uniform: one product each.
	products := concurrency
	if workload == "hotspot" {
		products = 1
	}
	productIDs := make([]string, 0, products)
	for i := 0; i < products; i++ {
		id, err := createProduct(client, sellerToken, fmt.Sprintf("bench-item-%d-%d", run, i))
		if err != nil {
			return nil, err
		}
		productIDs = append(productIDs, id)
	}

	buyers := make([]buyer, concurrency)
	for i := 0; i < concurrency; i++ {
		token, _, err := register(client, fmt.Sprintf("bench-buyer-%d-%d", run, i), "buyer")
		if err != nil {
			return nil, err
		}
		// Load the wallet up front so early requests don't all reject.
		for j := 0; j < 20; j++ {
			if err := deposit(client, token, 100); err != nil {
				return nil, err
			}
		}
		buyers[i] = buyer{token: token, productID: productIDs[i%len(productIDs)]}
	}
	return buyers, nil
}

func worker(wg *sync.WaitGroup, start time.Time, b buyer) {
	defer wg.Done()
	client := &http.Client{Timeout: 5 * time.Second}

	for time.Since(start) < duration {
		payload := map[string]interface{}{
			"product_id": b.productID,
			"quantity":   1,
		}
		body, _ := json.Marshal(payload)

		req, _ := http.NewRequest("POST", targetURL+"/api/v1/buy", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+b.token)

		resp, err := client.Do(req)
		if err != nil {
			atomic.AddUint64(&failOther, 1)
			continue
		}

		atomic.AddUint64(&totalRequests, 1)
		switch resp.StatusCode {
		case 200:
			atomic.AddUint64(&settled, 1)
		case 400:
			atomic.AddUint64(&rejected400, 1)
			// Broke or sold out; top the wallet back up and keep going.
			deposit(client, b.token, 100)
		default:
			atomic.AddUint64(&failOther, 1)
		}
		resp.Body.Close()
	}
}

func register(client *http.Client, username, role string) (token, id string, err error) {
	body, _ := json.Marshal(map[string]string{"username": username, "password": "bench-secret", "role": role})
	resp, err := client.Post(targetURL+"/api/v1/users", "application/json", bytes.NewBuffer(body))
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 201 {
		return "", "", fmt.Errorf("register %s: status %d", username, resp.StatusCode)
	}
	var created struct {
		ID string `json:"id"`
	}
	json.NewDecoder(resp.Body).Decode(&created)

	body, _ = json.Marshal(map[string]string{"username": username, "password": "bench-secret"})
	resp, err = client.Post(targetURL+"/api/v1/users/login", "application/json", bytes.NewBuffer(body))
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return "", "", fmt.Errorf("login %s: status %d", username, resp.StatusCode)
	}
	var login struct {
		Token string `json:"token"`
	}
	json.NewDecoder(resp.Body).Decode(&login)
	return login.Token, created.ID, nil
}

func createProduct(client *http.Client, token, name string) (string, error) {
	body, _ := json.Marshal(map[string]interface{}{"name": name, "price": 5, "stock": 1000000})
	req, _ := http.NewRequest("POST", targetURL+"/api/v1/products", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 201 {
		return "", fmt.Errorf("create product: status %d", resp.StatusCode)
	}
	var created struct {
		ID string `json:"id"`
	}
	json.NewDecoder(resp.Body).Decode(&created)
	return created.ID, nil
}

func deposit(client *http.Client, token string, coin int64) error {
	body, _ := json.Marshal(map[string]int64{"coin": coin})
	req, _ := http.NewRequest("POST", targetURL+"/api/v1/deposit", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode != 200 {
		return fmt.Errorf("deposit: status %d", resp.StatusCode)
	}
	return nil
}

func printResults(d time.Duration) {
	total := atomic.LoadUint64(&totalRequests)
	ok := atomic.LoadUint64(&settled)
	rej := atomic.LoadUint64(&rejected400)
	fErr := atomic.LoadUint64(&failOther)

	tps := float64(total) / d.Seconds()
	rejectRate := float64(rej) / float64(total) * 100

	results := map[string]interface{}{
		"workload":        workload,
		"duration_sec":    d.Seconds(),
		"total_requests":  total,
		"throughput_tps":  tps,
		"settled":         ok,
		"rejected":        rej,
		"reject_rate_pct": rejectRate,
		"errors":          fErr,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(results)

	filename := fmt.Sprintf("results_%s.json", workload)
	file, _ := os.Create(filename)
	defer file.Close()
	json.NewEncoder(file).Encode(results)
}
