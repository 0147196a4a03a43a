package repository

import "context"

// TxManager выполняет fn в одной транзакции. Репозитории, вызванные с переданным
// контекстом, работают внутри этой транзакции.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
