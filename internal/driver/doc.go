// Package driver manages nginx site files and the nginx service.
//
// A driver owns two things: the configuration file of a site under the
// available directory, and the daemon that serves it.
//
// # Site Files
//
// Configurations are named <domain>.conf. On split layouts (Debian
// sites-available / sites-enabled) Activate links the file into the enabled
// directory, replacing a link left by an earlier run. On single-directory
// layouts (RHEL conf.d) the file is live as soon as it is written.
//
//	drv := driver.NewNginx(platform.DebianPaths, "nginx")
//	if _, err := drv.WriteConfig("example.com", content); err != nil {
//	    return err
//	}
//	if err := drv.Activate("example.com"); err != nil {
//	    return err
//	}
//
// # Daemon Control
//
// Apply checks `systemctl is-active` and then either starts or reloads the
// service. It never restarts. Test runs `nginx -t`.
//
// # Testing
//
// NewNginxWithExecutor accepts a mock executor.CommandExecutor, and
// MockDriver records calls for tests of higher layers:
//
//	mockExec := &executor.MockExecutor{}
//	drv := driver.NewNginxWithExecutor(paths, "nginx", mockExec)
package driver
