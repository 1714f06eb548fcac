package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

var templates = map[string]string{
	"dev/.state/live_site.json5": `{
  // used by the live tests in lib/scrapers/sheriff
  base_url: "http://inmate-search.cobbsheriff.org",
  name: "",
  mode: "Inquiry",
}
`,
	"telemetry.json5": `{
  otlp: {
    traces: { http_endpoint: "" },
    metrics: { http_endpoint: "" },
  },
}
`,
	"config.local.json5": `{
  // overrides for config.json5 that should not be committed
  dump_http: "<dev_state>/resty",
}
`,
}

func create(recreate bool) error {
	_, err := os.Stat("go.mod")
	if os.IsNotExist(err) {
		return fmt.Errorf("the dev environment must be created in the repository root (the same directory as the 'go.mod' file)")
	}

	if recreate {
		err = os.RemoveAll("dev/.state")
		if err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	err = os.MkdirAll("dev/.state", 0777)
	if err != nil {
		return err
	}

	for path, contents := range templates {
		_, err := os.Stat(path)
		if err == nil && !recreate {
			slog.Info("keeping existing file", "path", path)
			continue
		}
		err = os.MkdirAll(filepath.Dir(path), 0777)
		if err != nil {
			return err
		}
		err = os.WriteFile(path, []byte(contents), 0600)
		if err != nil {
			return err
		}
		slog.Info("wrote template", "path", path)
	}
	return nil
}

func main() {
	recreate := flag.Bool("recreate", false, "recreate the dev environment from scratch")
	flag.Parse()

	err := create(*recreate)
	if err != nil {
		slog.Error("failed to create dev environment", "err", err.Error())
		os.Exit(1)
	}

	slog.Info("dev environment created successfully!")
}
