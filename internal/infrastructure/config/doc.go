// Package config handles loading and validating Gray Timer configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with GRAYTIMER_* environment variables
//   - Validation of required fields
//   - Default value handling
//
// Sensitive values (MQTT password, InfluxDB token) should be supplied via
// environment variables rather than committed to the config file.
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.API.Address())
package config
