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

package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/vigneswara-propelo/harness-core-sub207/pkg/setting"
)

// SystemAddress is the fully qualified domain name of the system, or an IP Address.
// Port and protocol are required if necessary.
// for example: foo.bar.com, https://foo.bar.com, http://1.2.3.4:5678
func SystemAddress() string {
	return viper.GetString(setting.ENVSystemAddress)
}

func Mode() string {
	mode := viper.GetString(setting.ENVMode)
	if mode == "" {
		return setting.DebugMode
	}

	return mode
}

func Port() int {
	port := viper.GetInt(setting.ENVPort)
	if port == 0 {
		return 25000
	}

	return port
}

func LogLevel() string {
	level := viper.GetString(setting.ENVLogLevel)
	if level == "" {
		return "debug"
	}

	return level
}

func SendLogToFile() bool {
	return true
}

func LogPath() string {
	return fmt.Sprintf("/var/log/%s/", setting.ProductName)
}

func LogName() string {
	return "product.log"
}

func LogFile() string {
	return LogPath() + LogName()
}

func MongoURI() string {
	return viper.GetString(setting.ENVMongoDBConnectionString)
}

func MongoDatabase() string {
	db := viper.GetString(setting.ENVTriggerDBName)
	if db == "" {
		return setting.ProductName
	}

	return db
}

func WebhookServiceAddress() string {
	return viper.GetString(setting.ENVWebhookServiceAddress)
}

func PollingServiceAddress() string {
	return viper.GetString(setting.ENVPollingServiceAddress)
}

func PipelineServiceAddress() string {
	return viper.GetString(setting.ENVPipelineServiceAddress)
}

func ConnectorServiceAddress() string {
	return viper.GetString(setting.ENVConnectorServiceAddress)
}

func SettingsServiceAddress() string {
	return viper.GetString(setting.ENVSettingsServiceAddress)
}

// RequestTimeout bounds every outbound call to a collaborator service. A call
// that runs past it is treated as a transport error by the caller.
func RequestTimeout() time.Duration {
	timeout := viper.GetDuration(setting.ENVExternalCallTimeout)
	if timeout <= 0 {
		return 30 * time.Second
	}

	return timeout
}
