// Command mock-kruize serves the three Kruize endpoints used by
// kruize-load so a run can be exercised without a cluster.
package main

import (
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/tidwall/gjson"
)

type kruize struct {
	mu          sync.Mutex
	experiments map[string]struct{}

	profiles        atomic.Int64
	created         atomic.Int64
	rejected        atomic.Int64
	recommendations atomic.Int64

	failRate float64
	delay    time.Duration
	log      *logrus.Logger
}

func reply(w http.ResponseWriter, code int, message string) {
	status := "SUCCESS"
	if code >= 300 {
		status = "ERROR"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":  message,
		"httpcode": code,
		"status":   status,
	})
}

func (k *kruize) createMetricProfile(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	if !gjson.ValidBytes(body) {
		reply(w, http.StatusBadRequest, "Invalid metric profile JSON")
		return
	}
	k.profiles.Add(1)
	reply(w, http.StatusCreated, "Metric Profile : "+gjson.GetBytes(body, "metadata.name").String()+" created successfully.")
}

func (k *kruize) createExperiment(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	name := gjson.GetBytes(body, "0.experiment_name")
	if !name.Exists() {
		k.rejected.Add(1)
		reply(w, http.StatusBadRequest, "Experiment name cannot be null or empty")
		return
	}

	time.Sleep(k.delay)

	if k.failRate > 0 && rand.Float64() < k.failRate {
		k.rejected.Add(1)
		reply(w, http.StatusInternalServerError, "Injected failure")
		return
	}

	k.mu.Lock()
	_, exists := k.experiments[name.String()]
	if !exists {
		k.experiments[name.String()] = struct{}{}
	}
	k.mu.Unlock()

	if exists {
		k.rejected.Add(1)
		reply(w, http.StatusConflict, "Experiment name : "+name.String()+" is duplicate")
		return
	}

	k.created.Add(1)
	reply(w, http.StatusCreated, "Experiment registered successfully with Kruize.")
}

func (k *kruize) generateRecommendations(w http.ResponseWriter, r *http.Request) {
	io.Copy(io.Discard, r.Body)
	k.recommendations.Add(1)
	reply(w, http.StatusCreated, "Recommendations generated")
}

func post(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			reply(w, http.StatusMethodNotAllowed, "POST only")
			return
		}
		h(w, r)
	}
}

func (k *kruize) report(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		k.log.WithFields(logrus.Fields{
			"profiles":        k.profiles.Load(),
			"created":         k.created.Load(),
			"rejected":        k.rejected.Load(),
			"recommendations": k.recommendations.Load(),
		}).Info("stats")
	}
}

func main() {
	addr := pflag.StringP("addr", "a", "127.0.0.1:8080", "Listen address")
	failRate := pflag.Float64("fail-rate", 0, "Fraction of experiments rejected with 500")
	delay := pflag.Duration("delay", 0, "Artificial latency per experiment")
	pflag.Parse()

	runtime.GOMAXPROCS(runtime.NumCPU())

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	k := &kruize{
		experiments: make(map[string]struct{}),
		failRate:    *failRate,
		delay:       *delay,
		log:         log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/createMetricProfile", post(k.createMetricProfile))
	mux.HandleFunc("/createExperiment", post(k.createExperiment))
	mux.HandleFunc("/generateRecommendations", post(k.generateRecommendations))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		ReadHeaderTimeout: 2 * time.Second,
	}

	go k.report(5 * time.Second)

	log.Infof("Starting mock Kruize on %s", *addr)
	if err := server.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}
