/*
 * Copyright (c) 2023 InfAI (CC SES)
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
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
	"fmt"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/broker"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/configuration"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/connector"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/discovery"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/ihc"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

var (
	flagConfig     string
	flagVerbose    bool
	flagDebug      bool
	flagController string
	flagRulesDir   string
)

var rootCmd = &cobra.Command{
	Use:          "mgw-ihc-dc",
	Short:        "IHC controller connector for the SENERGY mgw",
	SilenceUsage: true,
	RunE:         run,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "connect the configured ihc controllers to the mgw (default)",
	Args:  cobra.NoArgs,
	RunE:  run,
}

var discoverCmd = &cobra.Command{
	Use:   "discover <project.xml>",
	Short: "print the resources auto setup finds in an ihc project file",
	Args:  cobra.ExactArgs(1),
	RunE:  discover,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate <legacy.yaml>",
	Short: "convert the device lists of a legacy configuration into " + discovery.ManualSetupFile,
	Args:  cobra.ExactArgs(1),
	RunE:  migrate,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "config.json", "configuration file")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "log debug messages")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "log debug and trace messages")
	discoverCmd.Flags().StringVar(&flagController, "controller", "discover", "controller id used for the discovered resources")
	discoverCmd.Flags().StringVar(&flagRulesDir, "rules-dir", "", "directory containing "+discovery.AutoSetupFile+" (default: embedded rules)")
	rootCmd.AddCommand(runCmd, discoverCmd, migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (configuration.Config, error) {
	config, err := configuration.Load(flagConfig)
	if err != nil {
		return config, err
	}
	log.Init(log.Options{
		Verbose: flagVerbose,
		Debug:   flagDebug || config.Debug,
		LogFile: config.LogFile,
	})
	return config, nil
}

func run(_ *cobra.Command, _ []string) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}
	logger := log.Logger.WithName("main")

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	defer wg.Wait()
	defer cancel()

	if config.EmbeddedBroker != "" {
		err = broker.Start(ctx, wg, config.EmbeddedBroker)
		if err != nil {
			return err
		}
	}

	c, err := connector.Start(ctx, wg, config)
	if err != nil {
		return err
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	for sig := range signals {
		if sig != syscall.SIGHUP {
			logger.Info("received shutdown signal", "signal", sig.String())
			return nil
		}
		logger.Info("reload controller entries")
		updated, err := configuration.Load(flagConfig)
		if err != nil {
			logger.Error(err, "unable to reload configuration")
			continue
		}
		err = c.ReloadAll(updated.Controllers)
		if err != nil {
			logger.Error(err, "not all ihc controllers could be set up")
		}
	}
	return nil
}

func discover(cmd *cobra.Command, args []string) error {
	log.Init(log.Options{Verbose: flagVerbose, Debug: flagDebug})
	project, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	rules, err := discovery.DefaultRules()
	if flagRulesDir != "" {
		rules, err = discovery.LoadRules(flagRulesDir)
	}
	if err != nil {
		return err
	}
	mapping, err := discovery.AutoSetup(string(project), rules, flagController)
	if err != nil {
		return err
	}
	encoder := yaml.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent(2)
	defer encoder.Close()
	return encoder.Encode(mapping)
}

func migrate(cmd *cobra.Command, args []string) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}
	factory, err := ihc.GetFactory(config.Backend)
	if err != nil {
		return err
	}
	written, err := discovery.Migrate(args[0], config.ConfigDir, func(url string, username string, password string) (string, error) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		session, err := ihc.Open(ctx, factory, url, username, password)
		if err != nil {
			return "", err
		}
		defer session.Close()
		return session.Id(), nil
	})
	if err != nil {
		return err
	}
	if written {
		fmt.Fprintln(cmd.OutOrStdout(), "migrated configuration to", config.ConfigDir+string(os.PathSeparator)+discovery.ManualSetupFile)
	}
	return nil
}
