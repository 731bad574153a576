package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	conf, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if conf.Split.Rows != 3 || conf.Split.Cols != 3 || conf.Server.Addr != ":8080" {
		t.Fatalf("unexpected defaults %+v", conf)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toolbox.toml")
	data := `
[server]
addr = ":9090"
cors = true

[split]
rows = 4
cols = 2
style = "dashed"

[convert]
format = "webp"

[storage]
bucket = "from-file"
prefix = "job1"
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MINIO_BUCKET", "from-env")
	t.Setenv("MAX_WORKERS", "3")

	conf, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if conf.Server.Addr != ":9090" || !conf.Server.Cors {
		t.Errorf("server %+v", conf.Server)
	}
	if conf.Server.WSPath != "/ws/editor" {
		t.Errorf("unset keys should keep defaults, got %q", conf.Server.WSPath)
	}
	if conf.Split.Rows != 4 || conf.Split.Cols != 2 || conf.Split.Style != "dashed" {
		t.Errorf("split %+v", conf.Split)
	}
	if conf.Convert.Format != "webp" {
		t.Errorf("convert %+v", conf.Convert)
	}
	if conf.Storage.Bucket != "from-env" || conf.Storage.Prefix != "job1" {
		t.Errorf("storage %+v", conf.Storage)
	}
	if conf.Bench.MaxWorkers != 3 {
		t.Errorf("bench %+v", conf.Bench)
	}
	if m := conf.MinioConfig(); m.Bucket != "from-env" || m.Region != "us-east-1" {
		t.Errorf("minio config %+v", m)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"grid":   "[split]\nrows = 11\n",
		"style":  "[split]\nstyle = \"dotted\"\n",
		"format": "[convert]\nformat = \"tiff\"\n",
		"syntax": "[split\n",
	}
	for name, data := range cases {
		path := filepath.Join(t.TempDir(), name+".toml")
		if err := os.WriteFile(path, []byte(data), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}
