package main

import (
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

const (
	numWorkers   = 50
	testDuration = 10 * time.Second
	numGuilds    = 20
)

var (
	baseURL = envOr("GUILDSTORE_URL", "http://127.0.0.1:8090")
	apps    = []string{"quests", "raffles", "leaderboard", "verify", "tips"}
	methods = []string{"fcfs", "raffle", "kol"}
)

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	fmt.Println("=== GuildStore Load Test ===")
	fmt.Printf("Target: %s | Workers: %d | Duration: %s | Guilds: %d\n\n", baseURL, numWorkers, testDuration, numGuilds)

	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(baseURL + "/health")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			os.Exit(1)
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	fmt.Println("\n--- Phase 1: Seeding (publish + install) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		if rng.Float64() < 0.5 {
			return doPublish(rng)
		}
		return doInstall(rng)
	})

	fmt.Println("\n--- Phase 2: Mixed load (30% writes, 70% reads) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.10:
			return doPublish(rng)
		case r < 0.20:
			return doInstall(rng)
		case r < 0.30:
			return doUninstall(rng)
		case r < 0.60:
			return doList(rng, "/social-campaigns")
		case r < 0.85:
			return doList(rng, "/apps")
		default:
			return doGet("/snapshot")
		}
	})

	fmt.Println("\n--- Phase 3: Read-heavy load (5% writes, 95% reads) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.05:
			return doPublish(rng)
		case r < 0.50:
			return doList(rng, "/social-campaigns")
		case r < 0.80:
			return doList(rng, "/apps")
		case r < 0.90:
			return doGet("/export")
		default:
			return doGet("/snapshot")
		}
	})
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					results <- workFn(rng)
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{}
				allResults[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, duration)
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps int64
	var totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-28s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + strings.Repeat("-", 94))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		fmt.Printf("  %-28s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors,
			fmtDur(avgDuration(s.latencies)),
			fmtDur(percentile(s.latencies, 0.50)),
			fmtDur(percentile(s.latencies, 0.95)),
			fmtDur(percentile(s.latencies, 0.99)))
	}

	if totalOps == 0 {
		return
	}
	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + strings.Repeat("-", 94))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, rps)
}

func guild(rng *rand.Rand) string {
	return fmt.Sprintf("guild-%d", rng.Intn(numGuilds)+1)
}

func doPublish(rng *rand.Rand) result {
	body := map[string]interface{}{
		"guildId":            guild(rng),
		"name":               fmt.Sprintf("Campaign %d", rng.Intn(1_000_000)),
		"distributionMethod": methods[rng.Intn(len(methods))],
		"blockchain":         "solana",
		"token":              "USDC",
		"rewardPool":         float64(rng.Intn(10_000)),
		"totalWinners":       rng.Intn(100),
	}
	return doPost("/social-campaigns", body, http.StatusCreated)
}

func doInstall(rng *rand.Rand) result {
	body := map[string]interface{}{
		"guildId":     guild(rng),
		"appId":       apps[rng.Intn(len(apps))],
		"installedBy": fmt.Sprintf("user-%d", rng.Intn(500)),
	}
	return doPost("/apps/install", body, http.StatusNoContent)
}

func doUninstall(rng *rand.Rand) result {
	body := map[string]interface{}{
		"guildId": guild(rng),
		"appId":   apps[rng.Intn(len(apps))],
	}
	return doPost("/apps/uninstall", body, http.StatusNoContent)
}

func doList(rng *rand.Rand, path string) result {
	res := doGet(path + "?guild=" + guild(rng))
	res.endpoint = "GET " + path
	return res
}

func doPost(path string, body interface{}, want int) result {
	endpoint := "POST " + path
	data, err := json.Marshal(body)
	if err != nil {
		return result{endpoint, 0, 0, true}
	}
	start := time.Now()
	resp, err := httpClient.Post(baseURL+path, "application/json", bytes.NewReader(data))
	lat := time.Since(start)
	if err != nil {
		return result{endpoint, 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{endpoint, resp.StatusCode, lat, resp.StatusCode != want}
}

func doGet(path string) result {
	endpoint := "GET " + path
	start := time.Now()
	resp, err := httpClient.Get(baseURL + path)
	lat := time.Since(start)
	if err != nil {
		return result{endpoint, 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{endpoint, resp.StatusCode, lat, resp.StatusCode != http.StatusOK}
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dus", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}
