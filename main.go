package main

import (
	"flag"
	"os"

	"github.com/rs/zerolog"

	"tastebook/crud"
	"tastebook/http"
)

// main is the app's entry point.
func main() {
	// Check if the flag "-prod" has been provided. It means that we're running in production.
	productionBool := flag.Bool("prod", false, "Provide this flag in production to ensure that a .config.json file is provided before the application starts.")
	flag.Parse()

	// Load configuration from a .config.json file if present, otherwise use the default dev setup.
	// In production the .config.json file is required and the app will panic if no file is found.
	config := LoadConfig(*productionBool)

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if !config.IsProd() {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Open a database connection and execute migrations.
	dbConfig := config.Database
	db := NewDB(dbConfig.ConnectionInfo())
	err := Open(db, config.IsProd())
	must(err)
	defer Close(db)
	err = AutoMigrate(db)
	must(err)

	// Start the crud services.
	services, err := crud.NewServices(
		db.Gorm,
		crud.WithUser(),
		crud.WithRecipe(),
		crud.WithReview(),
		crud.WithFollow(),
		crud.WithLike(),
		crud.WithStats(),
		crud.WithImport(),
	)
	must(err)

	// Set up a webserver.
	server := http.NewServer(services, logger)

	// Serve the app.
	must(server.Run(config.Port))
}

// must is a little helper for shortening the panic instruction.
func must(err error) {
	if err != nil {
		panic(err)
	}
}
