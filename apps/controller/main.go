package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/PhantomInTheWire/image-toolbox/pkg/config"
	"github.com/PhantomInTheWire/image-toolbox/pkg/logger"
	"github.com/PhantomInTheWire/image-toolbox/pkg/split"
	"github.com/PhantomInTheWire/image-toolbox/pkg/storage"
)

var log = logger.New("[controller]")

var invalidKeyChars = regexp.MustCompile(`[^a-z0-9-]`)

// jobPrefix derives an object prefix from the image name, unique per run.
func jobPrefix(image string, now time.Time) string {
	base := strings.TrimSuffix(filepath.Base(image), filepath.Ext(image))
	sanitized := invalidKeyChars.ReplaceAllString(strings.ToLower(base), "-")
	sanitized = strings.Trim(sanitized, "-")

	name := fmt.Sprintf("split-%s-%d", sanitized, now.UnixNano())
	if len(name) > 63 {
		name = name[:63]
	}
	return name
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: controller <image-path>")
		os.Exit(1)
	}
	imagePath := os.Args[1]

	conf, err := config.Load("")
	if err != nil {
		log.Fatalln("get config:", err)
	}

	outDir := filepath.Join(conf.Bench.SharedDir, "tiles")
	if err := os.RemoveAll(outDir); err != nil {
		log.Fatalln("clean tile dir:", err)
	}

	grid := split.Grid{Rows: conf.Split.Rows, Cols: conf.Split.Cols}
	tiles, err := split.File(imagePath, outDir, split.ByGrid(grid))
	if err != nil {
		log.Fatalf("error splitting image: %v", err)
	}
	log.Println("tiles created:", tiles)

	minioCfg := conf.MinioConfig()
	if minioCfg.Prefix == "" {
		minioCfg.Prefix = jobPrefix(imagePath, time.Now())
	}

	ctx := context.Background()
	bucket, err := storage.NewS3(ctx, minioCfg)
	if err != nil {
		log.Fatalf("failed to connect to MinIO: %v", err)
	}
	n, err := bucket.UploadDir(ctx, outDir, ".png")
	if err != nil {
		log.Fatalf("failed to upload tiles to MinIO: %v", err)
	}
	log.Printf("uploaded %d/%d tiles to %s/%s", n, len(tiles), minioCfg.Bucket, minioCfg.Prefix)
	if n < len(tiles) {
		os.Exit(1)
	}
}
