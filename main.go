package main

import (
	"log"
	"net/http"
	"os"

	"aquaflow/account"
	"aquaflow/address"
	"aquaflow/authority"
	"aquaflow/bizerror"
	"aquaflow/client/geocode"
	"aquaflow/client/routing"
	"aquaflow/domain"
	"aquaflow/es"
	"aquaflow/event"
	"aquaflow/indices"
	"aquaflow/indices/search"
	"aquaflow/infra/tracing"
	"aquaflow/notification"
	"aquaflow/order"
	"aquaflow/persistence"
	"aquaflow/route"
	"aquaflow/session"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/opentracing/opentracing-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	jaegerlog "github.com/uber/jaeger-client-go/log"
	"github.com/uber/jaeger-lib/metrics"
)

func main() {
	log.Println("service start")

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file loaded")
	}

	closer := startTracing()
	defer closer()

	dbConfig, err := persistence.ParseDatabaseConfigFromEnv()
	if err != nil {
		log.Fatalf("parse database config failed %v\n", err)
	}

	// create database (no conflict)
	if dbConfig.DriverType == "mysql" {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			log.Fatalf("failed to prepare database %v\n", err)
		}
	}

	// connect database
	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		log.Fatalf("database conneciton failed %v\n", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	// database migration (race condition)
	err = ds.GormDB().AutoMigrate(&domain.User{}, &domain.Token{}, &domain.Role{}, &domain.Action{},
		&domain.RoleAction{}, &domain.Address{}, &domain.Order{}, &event.EventRecord{}).Error
	if err != nil {
		log.Fatalf("database migration failed %v\n", err)
	}

	if err := account.DefaultSecurityConfiguration(); err != nil {
		log.Fatalf("security bootstrap failed %v\n", err)
	}

	notification.StartNotifier(notification.ConfigFromEnv())

	transport := &tracing.TracingTransport{Transport: http.DefaultTransport}
	geocoder := geocode.NewGeocoder(geocode.ConfigFromEnv(), transport)
	address.GeocodeFunc = geocoder.Locate
	router := routing.NewRouter(routing.ConfigFromEnv(), transport)
	route.DriveRouteFunc = router.DriveRoute

	es.CreateClientFromEnv()
	event.EventHandlers = append(event.EventHandlers, indices.IndexOrderEventHandle)
	indexCron := indices.StartCron()
	defer indexCron.Stop()

	engine := gin.Default()
	engine.Use(tracing.TracingIngress(), bizerror.ErrorHandling())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "aquaflow")
	})

	account.RegisterAccountsRestAPI(engine)

	account.RegisterUsersRestAPI(engine, session.SimpleAuthFilter())
	authority.RegisterRolesRestAPI(engine, session.SimpleAuthFilter())
	address.RegisterAddressesRestAPI(engine, session.SimpleAuthFilter())
	order.RegisterOrdersRestAPI(engine, session.SimpleAuthFilter())
	route.RegisterRoutesRestAPI(engine, session.SimpleAuthFilter())
	indices.RegisterIndicesRestAPI(engine, session.SimpleAuthFilter())
	search.RegisterOrderSearchRestAPI(engine, session.SimpleAuthFilter())

	if err := engine.Run(":80"); err != nil {
		panic(err)
	}
}

func startTracing() func() {
	cfg, err := jaegercfg.FromEnv()
	if err != nil {
		log.Printf("jaeger config failed %v\n", err)
		return func() {}
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = os.Getenv("SERVICE_NAME")
		if cfg.ServiceName == "" {
			cfg.ServiceName = "aquaflow"
		}
	}

	tracer, closer, err := cfg.NewTracer(
		jaegercfg.Logger(jaegerlog.StdLogger),
		jaegercfg.Metrics(metrics.NullFactory),
	)
	if err != nil {
		log.Printf("jaeger tracer failed %v\n", err)
		return func() {}
	}
	opentracing.SetGlobalTracer(tracer)
	return func() {
		if err := closer.Close(); err != nil {
			log.Printf("jaeger closer failed %v\n", err)
		}
	}
}
