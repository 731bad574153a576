package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/PhantomInTheWire/image-toolbox/pkg/codec"
	"github.com/PhantomInTheWire/image-toolbox/pkg/config"
	"github.com/PhantomInTheWire/image-toolbox/pkg/convert"
	"github.com/PhantomInTheWire/image-toolbox/pkg/logger"
	"github.com/PhantomInTheWire/image-toolbox/pkg/storage"
)

var log = logger.New("[bench]")

func checkErr(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func loadInputs(dir string) []*convert.Item {
	var items []*convert.Item
	q := convert.NewQueue()
	checkErr(filepath.Walk(dir, func(p string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		items = append(items, q.Add(filepath.Base(p), data))
		return nil
	}))
	return items
}

// pooled converts items with a fixed number of workers.
func pooled(ctx context.Context, items []*convert.Item, f codec.Format, workers int) {
	tasks := make(chan *convert.Item)
	done := make(chan struct{})

	for i := 0; i < workers; i++ {
		go func() {
			for it := range tasks {
				out, err := convert.Convert(ctx, it.Name, it.Data, f)
				if err != nil {
					it.Err = err
				} else {
					it.Converted = out
					it.ConvertedFormat = f
				}
				done <- struct{}{}
			}
		}()
	}

	go func() {
		for _, it := range items {
			tasks <- it
		}
		close(tasks)
	}()

	for range items {
		<-done
	}
}

func reset(items []*convert.Item) {
	for _, it := range items {
		it.Converted = nil
		it.ConvertedFormat = ""
		it.Err = nil
	}
}

func main() {
	conf, err := config.Load("")
	checkErr(err)

	f, err := codec.ParseFormat(conf.Convert.Format)
	checkErr(err)

	inputDir := filepath.Join(conf.Bench.SharedDir, "input")
	outputDir := filepath.Join(conf.Bench.SharedDir, "output")
	checkErr(os.RemoveAll(outputDir))

	items := loadInputs(inputDir)
	if len(items) == 0 {
		fmt.Printf("No images in %s\n", inputDir)
		return
	}
	workers := conf.Bench.MaxWorkers
	if workers < 1 {
		workers = 1
	}
	ctx := context.Background()

	fmt.Printf("Found %d images, converting to %s\n", len(items), f.String())

	start := time.Now()
	convert.All(ctx, items, f)
	fmt.Printf("one goroutine per image: %v\n", time.Since(start))

	reset(items)
	start = time.Now()
	pooled(ctx, items, f, workers)
	fmt.Printf("%d workers:              %v\n", workers, time.Since(start))

	out := storage.Dir{Path: outputDir}
	saved := 0
	for _, it := range items {
		if !it.Done() {
			log.Println("failed", it.Name+":", it.Err)
			continue
		}
		checkErr(out.Save(ctx, it.OutputName(), bytes.NewReader(it.Converted)))
		saved++
	}
	fmt.Printf("Saved %d/%d to %s\n", saved, len(items), outputDir)
}
