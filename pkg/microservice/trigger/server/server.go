/*
Copyright 2023 The KodeRover Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	configbase "github.com/vigneswara-propelo/harness-core-sub207/pkg/config"
	"github.com/vigneswara-propelo/harness-core-sub207/pkg/microservice/trigger/core"
	"github.com/vigneswara-propelo/harness-core-sub207/pkg/microservice/trigger/server/rest"
	"github.com/vigneswara-propelo/harness-core-sub207/pkg/tool/log"
)

func Serve(ctx context.Context) error {
	core.Start(ctx)
	defer core.Stop(context.TODO())

	log.Info("Start trigger service")

	engine := rest.NewEngine()
	server := &http.Server{Addr: fmt.Sprintf(":%d", configbase.Port()), Handler: engine}

	stopChan := make(chan struct{})
	go func() {
		defer close(stopChan)

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.TODO(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Errorf("Failed to stop server, error: %s", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Errorf("Failed to start http server, error: %s", err)
		return err
	}

	<-stopChan

	return nil
}
