// Command loadbalance reads a service topology -- either a static YAML file
// or a live etcd key prefix -- and drives it through flb.Dispatcher,
// printing the endpoint picked per call.
package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/source-build/go-flb/flb"
	"github.com/sirupsen/logrus"
	clientv3 "go.etcd.io/etcd/client/v3"
)

func main() {
	configPath := flag.String("config", "loadbalance.yaml", "path to loadbalance.yaml")
	etcdPrefix := flag.String("etcd-prefix", "", "if set, watch this etcd key prefix for endpoints instead of the YAML file")
	etcdEndpoints := flag.String("etcd-endpoints", "127.0.0.1:2379", "comma-separated etcd endpoints, used only with -etcd-prefix")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	var endpoints []flb.Endpoint
	if *etcdPrefix != "" {
		ch := make(chan []flb.Endpoint, 1)
		err := watchEndpoints(context.Background(), clientv3.Config{Endpoints: []string{*etcdEndpoints}}, *etcdPrefix, ch)
		if err != nil {
			log.WithError(err).Fatal("failed to watch etcd")
		}
		endpoints = <-ch
	} else {
		endpoints = make([]flb.Endpoint, 0, len(cfg.Endpoints))
		for _, ec := range cfg.Endpoints {
			ep := flb.NewStaticEndpoint(ec.Address, ec.StartTimestampMs)
			if ec.Weight > 0 {
				ep.WithAttr("", "weight", ec.Weight)
			}
			if ec.WarmupMs > 0 {
				ep.WithAttr("", "warmup", ec.WarmupMs)
			}
			if ec.HashNodes > 0 {
				ep.WithAttr("", "hash.nodes", ec.HashNodes)
			}
			if ec.HashArguments != "" {
				ep.WithAttr("", "hash.arguments", ec.HashArguments)
			}
			for method, w := range ec.MethodWeights {
				ep.WithAttr(method, "weight", w)
			}
			endpoints = append(endpoints, ep)
		}
	}

	dispatcher, err := flb.NewDispatcherByName(cfg.Policy, nil)
	if err != nil {
		log.WithError(err).Fatal("failed to build dispatcher")
	}

	target := flb.ServiceTarget{ServiceKey: cfg.ServiceKey}
	invocation := flb.Invocation{MethodName: "Create"}

	log.WithFields(logrus.Fields{
		"service": cfg.ServiceKey,
		"policy":  dispatcher.PolicyName(),
		"count":   len(endpoints),
	}).Info("dispatcher ready")

	for i := 0; i < 10; i++ {
		ep, err := dispatcher.Select(endpoints, target, invocation)
		if err != nil {
			log.WithError(err).Error("select failed")
			continue
		}
		fmt.Printf("call %2d -> %s\n", i+1, ep.Address())
	}
}
