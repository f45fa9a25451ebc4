package usecase

// Field は部分更新の1項目。
// 「未指定」（Set=false）と「明示的に値を入れる／クリアする」（Set=true）を
// 型で区別する。
type Field[T any] struct {
	Set   bool
	Value T
}

func SetField[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}
