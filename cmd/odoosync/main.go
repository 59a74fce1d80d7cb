/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/carverauto/odoosync/pkg/config"
	"github.com/carverauto/odoosync/pkg/correlate"
	"github.com/carverauto/odoosync/pkg/lifecycle"
	"github.com/carverauto/odoosync/pkg/odoo"
	"github.com/carverauto/odoosync/pkg/outbound"
	"github.com/carverauto/odoosync/pkg/poller"
	"github.com/nats-io/nats.go"
)

var errFailedToLoadConfig = fmt.Errorf("failed to load config")

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "/etc/odoosync/odoosync.json", "Path to bridge config file")
	flag.Parse()

	ctx := context.Background()

	cfgLoader := config.NewConfig(nil)

	var cfg poller.Config

	if err := cfgLoader.LoadAndValidate(ctx, *configPath, &cfg); err != nil {
		return fmt.Errorf("%w: %w", errFailedToLoadConfig, err)
	}

	bridgeLogger, err := lifecycle.CreateComponentLogger("odoosync", cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	nc, err := nats.Connect(cfg.NATSURL, nats.Name("odoosync"))
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	defer nc.Close()

	dispatcher, err := correlate.NewNATSDispatcher(nc, cfg.SubjectPrefix, bridgeLogger)
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}

	// Each monitored source runs a fully independent poller instance
	// with its own client and state.
	services := make([]lifecycle.Service, 0, len(cfg.Sources))

	for _, source := range cfg.Sources {
		client := odoo.NewClient(odoo.Auth{
			Endpoint: source.Endpoint,
			Database: source.Database,
			APIKey:   source.APIKey,
		}, bridgeLogger)

		services = append(services, poller.New(source, client, dispatcher, nil, bridgeLogger))
	}

	executor := outbound.NewExecutor(bridgeLogger)
	services = append(services, outbound.NewService(nc, cfg.RequestSubject, executor, bridgeLogger))

	return lifecycle.Run(ctx, bridgeLogger, services...)
}
