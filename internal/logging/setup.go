package logging

import (
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"

	logrustash "github.com/bshuster-repo/logrus-logstash-hook"
	"github.com/elastic/go-elasticsearch/v7"
	"github.com/sirupsen/logrus"
	"gopkg.in/go-extras/elogrus.v7"
)

const serviceName = "glucolog"

type Options struct {
	Level        string
	Format       string
	File         string
	LogstashURL  string
	ElasticURL   string
	ElasticIndex string
}

// NewLogrus builds the process logger. Hooks that cannot be attached are
// reported on the logger itself and skipped.
func NewLogrus(opts Options) (*logrus.Logger, io.Writer) {
	logger := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(opts.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if strings.EqualFold(opts.Format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05"})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	var out io.Writer = os.Stdout
	if opts.File != "" {
		if f, err := openLogFile(opts.File); err != nil {
			logger.Warnf("cannot open log file %s, logging to stdout: %v", opts.File, err)
		} else {
			out = io.MultiWriter(os.Stdout, f)
		}
	}
	logger.SetOutput(out)

	if opts.ElasticURL != "" {
		if hook, err := elasticHook(opts); err != nil {
			logger.Warnf("elasticsearch log hook disabled: %v", err)
		} else {
			logger.AddHook(hook)
		}
	}

	if opts.LogstashURL != "" {
		conn, err := net.Dial("udp", opts.LogstashURL)
		if err != nil {
			logger.Warnf("logstash log hook disabled: %v", err)
		} else {
			logger.AddHook(logrustash.New(conn, logrustash.DefaultFormatter(logrus.Fields{"type": serviceName})))
		}
	}

	return logger, out
}

func elasticHook(opts Options) (logrus.Hook, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{opts.ElasticURL},
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}
	index := opts.ElasticIndex
	if index == "" {
		index = serviceName
	}
	return elogrus.NewAsyncElasticHook(client, serviceName, logrus.InfoLevel, index)
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}
