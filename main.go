package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/duolog/duolog-server/helpers"
	"github.com/duolog/duolog-server/pkg/config"
	"github.com/duolog/duolog-server/pkg/factory"
	"github.com/duolog/duolog-server/pkg/logging"
	"github.com/duolog/duolog-server/pkg/routers"
	"github.com/duolog/duolog-server/pkg/services/db"
	"github.com/duolog/duolog-server/version"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

func main() {
	cli.VersionPrinter = func(c *cli.Command) {
		fmt.Printf("%s\n", c.Version)
	}

	app := &cli.Command{
		Name:        "duolog-server",
		Usage:       "Bilingual meeting transcription and translation server",
		Description: "without option will start server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Usage:       "Configuration file",
				DefaultText: "config.yaml",
				Value:       "config.yaml",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "create or update the database tables and exit",
				Action: runMigrate,
			},
		},
		Action:  startServer,
		Version: version.Version,
	}
	err := app.Run(context.Background(), os.Args)
	if err != nil {
		logrus.Fatalln(err)
	}
}

func loadConfig(c *cli.Command) (*config.AppConfig, error) {
	appCnf, err := helpers.ReadYamlConfigFile(c.String("config"))
	if err != nil {
		return nil, err
	}

	logger, err := logging.NewLogger(&appCnf.LogSettings)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to setup logger")
	}
	appCnf.Logger = logger

	// set this config for global usage
	return config.New(appCnf)
}

func runMigrate(ctx context.Context, c *cli.Command) error {
	appCnf, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err = factory.NewDatabaseConnection(ctx, appCnf); err != nil {
		return err
	}
	defer helpers.HandleCloseConnections(appCnf)

	if err = dbservice.New(appCnf.DB, appCnf.Logger).AutoMigrate(); err != nil {
		return err
	}
	appCnf.Logger.Infoln("database tables are up to date")
	return nil
}

func startServer(ctx context.Context, c *cli.Command) error {
	appCnf, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger := appCnf.Logger

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// now prepare our server
	err = helpers.PrepareServer(ctx, appCnf)
	if err != nil {
		logger.Fatalln(err)
	}
	// defer close connections
	defer helpers.HandleCloseConnections(appCnf)

	appFactory, err := factory.NewAppFactory(ctx, appCnf)
	if err != nil {
		logger.Fatalln(err)
	}

	// boot up some services
	if err = appFactory.Boot(); err != nil {
		logger.Fatalln(err)
	}
	defer appFactory.Shutdown()

	rt := routers.New(appFactory.AppConfig, appFactory.Controllers)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		sig := <-sigChan
		logger.Infoln("exit requested, shutting down", "signal", sig)
		cancel()
		_ = rt.Shutdown()
	}()

	err = rt.Listen(fmt.Sprintf(":%d", appCnf.Client.Port))
	if err != nil {
		logger.Errorln(err)
		return err
	}
	return nil
}
