package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"geneval/pkg/geneval/imaging"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.szostok.io/version"
	"go.szostok.io/version/printer"
)

// gtresize bulk resizes an image folder into a sibling dir named <dir>_<height>.
// The evaluator does this on its own when the sides disagree, this cmd is for
// doing it ahead of time. Already resized images are skipped so it can be
// rerun after an interrupt.
func main() {
	var start = time.Now()

	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

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
	var dir string
	var width int
	var height int
	var help bool
	var v bool
	flag.StringVar(&dir, "dir", "", "directory (abs path)")
	flag.IntVar(&width, "width", 0, "target width in pixels")
	flag.IntVar(&height, "height", 0, "target height in pixels")
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
	if strings.TrimSpace(dir) == "" {
		log.Fatal("directory not provided")
	}
	if width <= 0 || height <= 0 {
		log.Fatal("width and height must both be positive")
	}

	var resizedDir, err = imaging.ResizeDir(dir, width, height)
	handleErr("ResizeDir", err)
	log.Infof("Resized images are in %s", resizedDir)

	log.Info("Total time taken: ", time.Since(start))
}

// handleErr is a convience func to log and quit errors, all errors in this app are considered fatal
func handleErr(prefix string, err error) {
	if err != nil {
		log.Fatal(fmt.Errorf("%s: %w", prefix, err))
	}
}
