package mocks

//go:generate mockgen -destination=./mock_context.go -package=mocks github.com/tidemark-labs/tidemark/internal/strategy Context
//go:generate mockgen -destination=./mock_datasource.go -package=mocks github.com/tidemark-labs/tidemark/internal/datasource DataSource
