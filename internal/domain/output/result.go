package output

// Result исход операции над комнатой. Success=false с Error - штатная ошибка домена,
// неожиданные сбои возвращаются отдельным error.
type Result struct {
	Success bool
	Error   string
}

func OK() Result {
	return Result{Success: true}
}

func Failed(reason string) Result {
	return Result{Success: false, Error: reason}
}

// SpinResult исход розыгрыша; WinnerTelegramID заполнен только при Success
type SpinResult struct {
	Result
	WinnerTelegramID int64
}
