package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"geneval/internal/app/geneval"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.szostok.io/version"
	"go.szostok.io/version/printer"
)

func main() {
	var start = time.Now()
	var ctx, cancel = context.WithCancel(context.Background())

	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	var gracefulShutdown = make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, os.Interrupt, syscall.SIGTERM)

	// prom
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		s := &http.Server{
			Addr:           ":5000",
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   10 * time.Second,
			MaxHeaderBytes: 1 << 20,
		}
		log.Fatal(s.ListenAndServe())
	}()

	// get user opts
	var gtDir string
	var predDir string
	var paired bool
	var batchSize int
	var workers int
	var featureCacheFile string
	var unmatchedLogFile string
	var help bool
	var v bool
	flag.StringVar(&gtDir, "gt-dir", "", "ground truth directory (abs path)")
	flag.StringVar(&predDir, "pred-dir", "", "prediction directory (abs path)")
	flag.BoolVar(&paired, "paired", false, "also compute the per pair metrics PSNR, SSIM and LPIPS, requires matching filename keys on both sides")
	flag.IntVar(&batchSize, "batch-size", 16, "number of pairs per scoring batch")
	flag.IntVar(&workers, "workers", 4, "number of decode workers")
	flag.StringVar(&featureCacheFile, "feature-cache", "", "gzipped json file to store the image features which will be different for different input dirs")
	flag.StringVar(&unmatchedLogFile, "unmatched-log", "", "log file to store predictions that have no ground truth match")
	flag.BoolVar(&help, "help", false, "print help")
	flag.BoolVar(&v, "version", false, "print version")
	flag.BoolVar(&v, "v", false, "print version")
	flag.Parse()

	if help {
		flag.PrintDefaults()
		os.Exit(0)
	}
	if v {
		var verPrinter = printer.New()
		var info = version.Get()
		if err := verPrinter.PrintInfo(os.Stdout, info); err != nil {
			log.Fatal(err)
		}
		os.Exit(0)
	}
	if strings.TrimSpace(gtDir) == "" {
		log.Fatal("ground truth directory not provided")
	}
	if strings.TrimSpace(predDir) == "" {
		log.Fatal("prediction directory not provided")
	}
	gtDir = strings.TrimSuffix(gtDir, string(os.PathSeparator))
	predDir = strings.TrimSuffix(predDir, string(os.PathSeparator))
	if workers <= 0 || workers > runtime.GOMAXPROCS(0) {
		workers = 1
	}
	if featureCacheFile != "" && filepath.Ext(featureCacheFile) != ".gz" {
		log.Fatal("feature cache file must have extension .gz")
	}
	if unmatchedLogFile != "" && filepath.Ext(unmatchedLogFile) != ".log" {
		log.Fatal("unmatched log file must have extension .log")
	}

	// start er up
	var evaluator, err = geneval.NewEvaluator("geneval", gtDir, predDir, geneval.Config{
		Paired:           paired,
		BatchSize:        batchSize,
		NumWorkers:       workers,
		FeatureCacheFile: featureCacheFile,
		UnmatchedLogFile: unmatchedLogFile,
	})
	handleErr("NewEvaluator", err)

	// a signal cancels the run, in flight workers drain and Run returns
	go func() {
		<-gracefulShutdown
		log.Info("shutdown signal received, cancelling the run")
		cancel()
	}()

	log.Info("Started, go to grafana to monitor")

	report, err := evaluator.Run(ctx)
	handleErr("Run", err)

	handleErr("Render", report.Render(os.Stdout))

	// shut everything down
	log.Info("Shutting down")
	cancel()
	err = evaluator.Shutdown()
	if err != nil {
		log.Fatal("error shutting down", err)
	}

	log.Info("Total time taken: ", time.Since(start))
}

// handleErr is a convience func to log and quit errors, all errors in this app are considered fatal
func handleErr(prefix string, err error) {
	if err != nil {
		log.Fatal(fmt.Errorf("%s: %w", prefix, err))
	}
}
