package db

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx"
	"github.com/spf13/viper"

	"grafik/pkg/background"
	"grafik/pkg/logger"
)

// configuration :
// Defines the possible options to define the way this DB
// object should try to connect to the underlying database.
// Common parameters allow to locate the database through
// a network address and provide some information about a
// various set of connection parameters (username, DB name
// and password).
//
// The `host` references the address at which the database
// is hosted and thus where we should try to connect to it.
// The default value is "localhost".
//
// The `port` describes the exposed port to connect to the
// database.
// The default value is 5432.
//
// The `name` defines the name of the database. This value
// should be set as we cannot assume anything regarding its
// value in general.
//
// The `user` defines the role that this object should use
// to connect to the DB. It should be specified from the
// configuration file.
//
// The `password` defines the password to use to access to
// the DB given the specified username. No default value is
// provided for this value.
//
// The `timeout` which separates two successive connection
// attempts to the DB. In case an attempt fails we will wait
// for this amount of time before trying again. This time
// is expressed in seconds.
// The default value is `5` seconds.
//
// The `connectionsPool` defines the number of concurrent
// connections that can be issued on the underlying DB.
// The default value is `5`.
type configuration struct {
	host            string
	port            int
	name            string
	user            string
	password        string
	timeout         int
	connectionsPool int
}

// DB :
// Describes a database object to provides a wrapper on the
// pgx handler. Compared to the base wrapper it handles a
// mechanism to try connecting to the DB until it comes online.
// It will also retrieve automatically the parameters to use to
// connect to the DB from the configuration file.
//
// The `pool` holds a reference on the database object. This
// value is not `nil` whenever a connection to the DB has
// been successfully established.
//
// The `lock` allows to protect the `pool` value from some
// concurrent accesses.
//
// The `log` allows to notify information and errors. As the
// database may be the destination of the logs it should not
// be the default logger of the application.
//
// The `config` describes the connection properties to use
// to perform the connection to the DB object.
//
// The `health` periodically checks the connection and tries
// to establish it again when it is lost.
type DB struct {
	pool   *pgx.ConnPool
	lock   sync.Mutex
	log    logger.Logger
	config configuration
	health *background.Process
}

// ErrInvalidConfiguration :
// Indicates that a mandatory database setting is missing
// or that a setting has an invalid value.
var ErrInvalidConfiguration = fmt.Errorf("invalid DB configuration")

// parseConfiguration :
// Attempt to parse the configuration provided to this app
// to extract connection parameters to use for the DB. It
// relies on default value in case some values are not set
// and fails if some mandatory values cannot be found.
//
// Returns the built-in configuration object along with any
// error.
func parseConfiguration() (configuration, error) {
	config := configuration{
		"localhost",
		5432,
		"",
		"",
		"",
		5,
		5,
	}

	if viper.IsSet("Database.Host") {
		config.host = viper.GetString("Database.Host")
	}
	if viper.IsSet("Database.Port") {
		config.port = viper.GetInt("Database.Port")
	}
	if viper.IsSet("Database.Name") {
		config.name = viper.GetString("Database.Name")
	}
	if viper.IsSet("Database.User") {
		config.user = viper.GetString("Database.User")
	}
	if viper.IsSet("Database.Password") {
		config.password = viper.GetString("Database.Password")
	}
	if viper.IsSet("Database.Timeout") {
		config.timeout = viper.GetInt("Database.Timeout")
	}
	if viper.IsSet("Database.ConnectionsPool") {
		config.connectionsPool = viper.GetInt("Database.ConnectionsPool")
	}

	switch {
	case len(config.name) == 0:
		return config, fmt.Errorf("%w: empty DB name", ErrInvalidConfiguration)
	case len(config.user) == 0:
		return config, fmt.Errorf("%w: empty DB user", ErrInvalidConfiguration)
	case len(config.password) == 0:
		return config, fmt.Errorf("%w: empty DB password", ErrInvalidConfiguration)
	case config.port <= 0 || config.port >= 1<<16:
		return config, fmt.Errorf("%w: port %d", ErrInvalidConfiguration, config.port)
	case config.timeout <= 0:
		return config, fmt.Errorf("%w: timeout %d", ErrInvalidConfiguration, config.timeout)
	case config.connectionsPool <= 0:
		return config, fmt.Errorf("%w: connections pool %d", ErrInvalidConfiguration, config.connectionsPool)
	}

	return config, nil
}

// Configured :
// Returns `true` when the configuration defines a database,
// which is used to determine whether logs should be stored.
func Configured() bool {
	return viper.IsSet("Database.Name")
}

// NewPool :
// Performs the creation of a new database object. The created
// object will try to connect to the database described in the
// configuration file until a connection is established.
// Until the connection is successfully established, calls to
// `DBExecute` or `CopyFrom` will fail.
//
// The `log` allows to specify the logging device to use.
//
// Returns the created database object along with any error
// in the configuration.
func NewPool(log logger.Logger) (*DB, error) {
	config, err := parseConfiguration()
	if err != nil {
		return nil, err
	}

	if log == nil {
		log = logger.Discard
	}

	dbase := &DB{
		log:    log,
		config: config,
	}

	// A failed first attempt is not fatal: the health check below
	// keeps trying until the database comes online.
	dbase.createPoolAttempt()

	dbase.health = background.NewProcess(time.Duration(config.timeout)*time.Second, log).
		WithModule("db").
		WithOperation(func(context.Context) (bool, error) {
			return dbase.Healthcheck(), nil
		})

	if err := dbase.health.Start(); err != nil {
		dbase.Close()
		return nil, err
	}

	return dbase, nil
}

// createPoolAttempt :
// Used to try to connect to the database described in the configuration
// file. The connection is assigned to the internal attribute only if it
// has succeeded.
//
// Returns `true` if the attempt succeeded (i.e. if we are successfully
// connected to the DB) and `false` otherwise.
func (dbase *DB) createPoolAttempt() bool {
	config := dbase.config
	dbase.log.Info("Attempting to connect to \"%s\" (user: \"%s\", host: \"%s:%d\")", config.name, config.user, config.host, config.port)

	pool, err := pgx.NewConnPool(pgx.ConnPoolConfig{
		ConnConfig: pgx.ConnConfig{
			Host:     config.host,
			Database: config.name,
			Port:     uint16(config.port),
			User:     config.user,
			Password: config.password,
		},
		MaxConnections: config.connectionsPool,
		AcquireTimeout: 0,
	})

	// Keep the previous pool, if any, when the attempt fails.
	if err != nil {
		dbase.log.Warn("Failed to connect to DB \"%s\" (err: %v)", config.name, err)
		return false
	}

	dbase.log.Info("Connection to DB \"%s\" with username \"%s\" succeeded", config.name, config.user)

	dbase.lock.Lock()
	defer dbase.lock.Unlock()

	// Replace the pool which lost its connection.
	if dbase.pool != nil {
		dbase.pool.Close()
	}
	dbase.pool = pool

	return true
}

// Healthcheck :
// Used to check the health of the connection to the DB. In case
// the connection is found not to be healthy, a new attempt is
// scheduled immediately.
// Note that a connection lost since the last query is not always
// detected: the pool only notices it when it is used. The failed
// request marks the connection as dead and the next check then
// reconnects.
//
// Returns `true` if the connection is healthy.
func (dbase *DB) Healthcheck() bool {
	dbase.lock.Lock()
	healthy := dbase.pool != nil && dbase.pool.Stat().CurrentConnections > 0
	dbase.lock.Unlock()

	if healthy {
		return true
	}

	return dbase.createPoolAttempt()
}

// Close :
// Stops the health checks and releases the connections.
func (dbase *DB) Close() {
	if dbase.health != nil {
		dbase.health.Stop()
	}

	dbase.lock.Lock()
	defer dbase.lock.Unlock()

	if dbase.pool != nil {
		dbase.pool.Close()
		dbase.pool = nil
	}
}

// acquire :
// Returns the current pool or an error if the connection has not
// been established yet.
func (dbase *DB) acquire() (*pgx.ConnPool, error) {
	dbase.lock.Lock()
	defer dbase.lock.Unlock()

	if dbase.pool == nil {
		return nil, fmt.Errorf("cannot execute query on DB \"%s\" (err: %w)", dbase.config.name, ErrInvalidDB)
	}

	return dbase.pool, nil
}

// DBExecute :
// Attempts to perform the input query with the specified arguments on
// the internal database connection.
// Note that if the connection has not yet been established with the DB
// an error is returned.
//
// The `ctx` allows to cancel the query.
//
// The `query` represents the request to execute.
//
// The `args` are arguments to pass to the query.
//
// Returns any error.
func (dbase *DB) DBExecute(ctx context.Context, query string, args ...interface{}) error {
	pool, err := dbase.acquire()
	if err != nil {
		return err
	}

	_, err = pool.ExecEx(ctx, query, nil, args...)

	return formatDBError(err)
}

// CopyFrom :
// Inserts the input rows in `table` using the copy protocol,
// which is the fastest way to insert a batch of rows.
//
// Returns the number of inserted rows along with any error.
func (dbase *DB) CopyFrom(ctx context.Context, table string, columns []string, rows [][]interface{}) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	pool, err := dbase.acquire()
	if err != nil {
		return 0, err
	}

	count, err := pool.CopyFrom(pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))

	return count, formatDBError(err)
}
