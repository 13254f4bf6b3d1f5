package provider

import "github.com/m04kA/HSM-MarketplaceService/pkg/dbmetrics"

type DBExecutor = dbmetrics.DBExecutor
