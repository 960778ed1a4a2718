package internal

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"

	"github.com/dgraph-io/badger/v4"
	"github.com/shirou/gopsutil/process"
)

//go:embed inspect.html
var templatesFS embed.FS

const defaultPrefix = "msg:"

type InspectRow struct {
	Key       string
	Type      string
	Timestamp string
	Detail    string
}

type RowMapper func(key string, val []byte) InspectRow
type StatsProvider func() map[string]any

type PageData struct {
	Prefix string
	Items  []InspectRow
	Stats  map[string]any
}

// NewDebugHandler serves a read-only view of the store, one row per key under ?prefix=.
func NewDebugHandler(db *badger.DB, mapper RowMapper, statsProvider StatsProvider) http.Handler {
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))
	if mapper == nil {
		mapper = DefaultMapper
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /inspect", func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = defaultPrefix
		}
		data := PageData{
			Prefix: prefix,
			Stats:  make(map[string]any),
		}
		if statsProvider != nil {
			data.Stats = statsProvider()
		}

		err := db.View(func(txn *badger.Txn) error {
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			defer it.Close()
			for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
				item := it.Item()
				err := item.Value(func(val []byte) error {
					data.Items = append(data.Items, mapper(string(item.KeyCopy(nil)), val))
					return nil
				})
				if err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	})
	return mux
}

// StartDebugServer listens on every interface and blocks until ctx is done.
func StartDebugServer(ctx context.Context, log *slog.Logger, db *badger.DB, port int,
	mapper RowMapper, statsProvider StatsProvider) error {
	l, err := net.Listen("tcp", fmt.Sprintf("0.0.0.0:%d", port))
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: NewDebugHandler(db, mapper, statsProvider)}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	log.Info(fmt.Sprintf("Debug inspector on http://localhost:%d/inspect?prefix=%s", port, defaultPrefix))
	if err = srv.Serve(l); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func DefaultMapper(key string, val []byte) InspectRow {
	return InspectRow{
		Key:       key,
		Type:      "RAW",
		Timestamp: "--:--:--",
		Detail:    "Size: " + strconv.Itoa(len(val)) + " bytes",
	}
}

// ProcessStats reports the memory and CPU usage of the running server.
func ProcessStats(log *slog.Logger) StatsProvider {
	return func() map[string]any {
		stats := map[string]any{"pid": os.Getpid()}
		p, err := process.NewProcess(int32(os.Getpid()))
		if err != nil {
			log.Warn("Failed to read process", "error", err)
			return stats
		}
		if mem, err := p.MemoryInfo(); err == nil {
			stats["rss_mb"] = fmt.Sprintf("%.1f", float64(mem.RSS)/(1<<20))
		}
		if cpu, err := p.CPUPercent(); err == nil {
			stats["cpu_percent"] = fmt.Sprintf("%.2f", cpu)
		}
		return stats
	}
}
