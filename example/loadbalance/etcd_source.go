package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/source-build/go-flb/flb"
	clientv3 "go.etcd.io/etcd/client/v3"
)

// etcdEndpoint is the JSON shape written under the watched key prefix by
// whatever registers instances -- a subset of EndpointConfig's fields for the
// static YAML source: it has no hash_nodes or hash_arguments, so endpoints
// read from etcd always use the default consistent-hash settings.
type etcdEndpoint struct {
	Address          string         `json:"address"`
	StartTimestampMs int64          `json:"start_timestamp_ms"`
	Weight           int            `json:"weight"`
	WarmupMs         int            `json:"warmup_ms"`
	MethodWeights    map[string]int `json:"method_weights"`
}

// watchEndpoints connects to etcd and keeps out synced with every instance
// currently registered under prefix, pushing a fresh snapshot on every
// create/update/delete the way a real discovery integration would feed
// flb.Dispatcher.Select candidates.
func watchEndpoints(ctx context.Context, cfg clientv3.Config, prefix string, out chan<- []flb.Endpoint) error {
	cli, err := clientv3.New(cfg)
	if err != nil {
		return err
	}

	snapshot := func() ([]flb.Endpoint, int64, error) {
		resp, err := cli.Get(ctx, prefix, clientv3.WithPrefix())
		if err != nil {
			return nil, 0, err
		}
		endpoints := make([]flb.Endpoint, 0, len(resp.Kvs))
		for _, kv := range resp.Kvs {
			var rec etcdEndpoint
			if err := json.Unmarshal(kv.Value, &rec); err != nil {
				continue
			}
			endpoints = append(endpoints, toStaticEndpoint(rec))
		}
		return endpoints, resp.Header.Revision, nil
	}

	initial, revision, err := snapshot()
	if err != nil {
		return err
	}
	out <- initial

	go func() {
		watchCh := cli.Watch(ctx, prefix, clientv3.WithPrefix(), clientv3.WithRev(revision+1))
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-watchCh:
				if !ok {
					return
				}
				endpoints, _, err := snapshot()
				if err != nil {
					continue
				}
				out <- endpoints
			case <-time.After(30 * time.Second):
				// periodic resync guards against a missed watch event leaving
				// a stale snapshot in place indefinitely.
				endpoints, _, err := snapshot()
				if err == nil {
					out <- endpoints
				}
			}
		}
	}()
	return nil
}

func toStaticEndpoint(rec etcdEndpoint) *flb.StaticEndpoint {
	ep := flb.NewStaticEndpoint(rec.Address, rec.StartTimestampMs)
	if rec.Weight > 0 {
		ep.WithAttr("", "weight", rec.Weight)
	}
	if rec.WarmupMs > 0 {
		ep.WithAttr("", "warmup", rec.WarmupMs)
	}
	for method, w := range rec.MethodWeights {
		ep.WithAttr(method, "weight", w)
	}
	return ep
}
