// Package testdb provides utilities for database integration tests.
//
// The core pattern is transaction-based isolation: each test runs inside a
// transaction that is rolled back when the test completes, so tests can run
// in parallel against the same database without interfering with each other
// and without manual cleanup.
//
// A typical integration test package applies migrations once from TestMain
// and wraps each test in WithTx:
//
//	func TestMain(m *testing.M) {
//	    if !testdb.IsIntegrationTestEnvironment() {
//	        os.Exit(0)
//	    }
//	    db, err := testdb.GetTestDB()
//	    if err != nil {
//	        fmt.Printf("Failed to connect to test database: %v\n", err)
//	        os.Exit(1)
//	    }
//	    if err := testdb.MigrateUp(db); err != nil {
//	        fmt.Printf("Failed to run migrations: %v\n", err)
//	        os.Exit(1)
//	    }
//	    testDB = db
//	    code := m.Run()
//	    _ = db.Close()
//	    os.Exit(code)
//	}
//
//	func TestMyFeature(t *testing.T) {
//	    t.Parallel()
//	    testdb.WithTx(t, testDB, func(t *testing.T, tx *sql.Tx) {
//	        operatorStore := postgres.NewPostgresOperatorStore(tx, bcrypt.MinCost)
//	        // exercise the store; the transaction rolls back afterwards
//	    })
//	}
//
// The test database is selected with the DATABASE_URL or TRIAGE_TEST_DB_URL
// environment variable. When neither is set, integration tests skip.
package testdb
