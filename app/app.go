package app

import (
	"context"
	"fmt"
	"net/http"

	"product-image-studio/app/controller"
	"product-image-studio/app/router"
	"product-image-studio/config"
	"product-image-studio/db"
	"product-image-studio/logging"
	"product-image-studio/repository"
	"product-image-studio/service"
	"product-image-studio/utils"
)

// diskCacheMemoryBytes bounds the in-memory layer of the disk byte cache.
const diskCacheMemoryBytes = 64 << 20

// App holds the wired services of the studio
type App struct {
	Config    *config.Config
	Log       *logging.Logger
	Products  *repository.ProductImageRepository
	Transfers *repository.TransferLogRepository
	Drive     service.DriveServiceInterface
	Loader    *service.ImageLoader
	Workspace *service.Workspace
	Sheets    *service.SheetService
	Importer  service.ImportServiceInterface
	Mux       *http.ServeMux
}

// Initialize initializes the application
func Initialize(ctx context.Context, cfg *config.Config, log *logging.Logger) (*App, error) {
	if log == nil {
		log = logging.Default()
	}

	// Initialize database connection
	if err := db.InitDB(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize repositories
	products := repository.NewProductImageRepository(db.DB)
	transfers := repository.NewTransferLogRepository(db.DB)

	// Initialize image sources
	httpSource := service.NewHTTPSource(3, log.Named("http"))
	fetchers := map[utils.ReferenceKind]service.ObjectFetcher{
		utils.KindHTTP:      httpSource,
		utils.KindS3:        service.NewS3Source(cfg.AWSRegion),
		utils.KindAzureBlob: service.NewAzureBlobSource(httpSource.StandardClient()),
	}

	// Initialize Drive service when credentials are available
	var drive service.DriveServiceInterface
	if cfg.CredentialsPath != "" || cfg.CredentialsJSON != "" {
		driveService, err := service.NewDriveService(ctx, cfg.CredentialsPath, cfg.CredentialsJSON)
		if err != nil {
			return nil, err
		}
		drive = driveService
		fetchers[utils.KindDrive] = service.NewDriveSource(driveService)
	} else {
		log.Warnf("⚠️  Google Drive credentials not set, Drive references use public links and import is disabled")
	}

	loader := service.NewImageLoader(service.NewSourceRouter(fetchers), service.ImageLoaderOptions{
		Concurrency: cfg.FetchConcurrency,
		Timeout:     cfg.FetchTimeout,
		Cache:       service.NewDiskCache(cfg.CacheDir, diskCacheMemoryBytes),
		Logger:      log.Named("loader"),
	})

	workspace := service.NewWorkspace(service.WorkspaceOptions{
		Order:           cfg.TemplateColumns,
		PageSize:        cfg.PageSize,
		SilentThreshold: cfg.SilentThreshold,
		DefaultCategory: cfg.DefaultCategory,
		Loader:          loader,
		Products:        products,
		Transfers:       transfers,
		Logger:          log.Named("workspace"),
	})

	sheets, err := service.NewSheetService(cfg.BaseURL, cfg.ChromePath, log.Named("sheet"))
	if err != nil {
		return nil, err
	}

	var importer service.ImportServiceInterface
	if drive != nil {
		importer = service.NewImportService(drive, products, cfg.DefaultCategory, log.Named("import"))
	}

	// Create controllers
	controllers := &router.Controllers{
		Workspace: controller.NewWorkspaceController(workspace, sheets, log.Named("http")),
		Product:   controller.NewProductController(importer, products, transfers),
	}

	// Setup routes using standard http router
	mux := http.NewServeMux()
	router.SetupRoutes(mux, controllers)

	return &App{
		Config:    cfg,
		Log:       log,
		Products:  products,
		Transfers: transfers,
		Drive:     drive,
		Loader:    loader,
		Workspace: workspace,
		Sheets:    sheets,
		Importer:  importer,
		Mux:       mux,
	}, nil
}

// Close releases the database connection
func (a *App) Close() error {
	return db.CloseDB()
}
