package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"deces-backend/api/handler"
	"deces-backend/api/router"
	"deces-backend/job"
	"deces-backend/service"
	"deces-backend/storage/es"
	"deces-backend/storage/postgres"
	"deces-backend/vars"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. 初始化 DB
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		vars.PGHOST, vars.PGUSER, vars.PGPWD, vars.PGDB, vars.PGPORT)
	db, err := postgres.InitDB(dsn)
	if err != nil {
		panic(err)
	}
	jobRepo := postgres.NewBulkJobRepo(db)

	// 2. 启动定时任务
	c := job.StartCronJob(jobRepo, vars.BULK_RESULT_TTL)
	defer c.Stop()

	// 3. 初始化 ES
	esIndexer, err := es.NewPersonIndexer([]string{vars.ESADDR}, vars.ES_INDEX)
	if err != nil {
		panic(fmt.Sprintf("ES 初始化失败:%v", err))
	}
	retriever := es.NewPersonRetriever(esIndexer.GetClient(), vars.ES_INDEX)

	// 4. 初始化 Service (业务层)
	searchSvc := service.NewSearchService(retriever, esIndexer)
	bulkSvc := service.NewBulkService(jobRepo, retriever, service.DefaultBulkConfig())

	// 5. 初始化 Handler (API 层)
	personHandler := handler.NewPersonHandler(searchSvc, bulkSvc)

	// 6. 启动 Web Server
	r := gin.Default()
	router.RegisterRoutes(r, personHandler)

	srv := &http.Server{Addr: ":" + vars.PORT, Handler: r}
	go func() {
		log.Printf("Server running on :%s", vars.PORT)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	bulkSvc.Shutdown()
}
