// Package store adapts the document store behind the search and ingest
// paths: index management, descriptor execution and bulk upserts.
package store

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/newscope/searcher/internal/config"
	"github.com/newscope/searcher/internal/errors"
)

// Store wraps the Elasticsearch client.
type Store struct {
	es        *elasticsearch.Client
	transport *http.Transport
	log       *slog.Logger
}

// New connects to the document store. The connection is verified with a
// ping so misconfiguration fails at startup, not on the first search.
func New(cfg config.ElasticConfig, log *slog.Logger) (*Store, error) {
	transport := &http.Transport{}

	if cfg.TLSInsecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	} else if cfg.CAPath != "" {
		pem, err := os.ReadFile(cfg.CAPath)
		if err != nil {
			return nil, errors.Startup(fmt.Sprintf("read CA bundle %s", cfg.CAPath), err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, errors.Startup(fmt.Sprintf("no certificates in CA bundle %s", cfg.CAPath), nil)
		}
		transport.TLSClientConfig = &tls.Config{RootCAs: pool}
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.Host},
		Username:  cfg.User,
		Password:  cfg.Password,
		Transport: transport,
	})
	if err != nil {
		return nil, errors.Startup("create document store client", err)
	}

	res, err := es.Ping()
	if err != nil {
		return nil, errors.Startup(fmt.Sprintf("connect to document store at %s", cfg.Host), err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, errors.Startup(fmt.Sprintf("document store at %s returned %s", cfg.Host, res.Status()), nil)
	}

	log.Info("connected to document store", "host", cfg.Host)
	return &Store{es: es, transport: transport, log: log}, nil
}

// Close releases idle connections.
func (s *Store) Close() {
	s.transport.CloseIdleConnections()
}
