package domain

// PerformanceReport es el resultado derivado y de solo lectura de un backtest.
// Se produce una vez por run; dos runs con inputs idénticos producen reports
// idénticos (requisito de comparabilidad del optimizer).
type PerformanceReport struct {
	FinalEquity      float64
	TotalReturnPct   float64
	TradeCount       int
	WinRate          float64 // trades cerrados con pnl > 0 / total cerrados
	MaxDrawdownPct   float64
	LiquidationCount int
	TotalFees        float64
	Halted           bool // el run terminó en estado HALTED por drawdown
	EquityCurve      []float64
	TradeLog         []Trade
}

// TrialResult es una entrada del ranking del optimizer. Un trial fallido
// (ParameterSet inválido, serie vacía) aparece igualmente en la tabla con
// Err como marcador en vez de desaparecer en silencio.
type TrialResult struct {
	Params ParameterSet
	Report PerformanceReport
	Err    string // vacío si el trial corrió bien
}

// Failed informa si el trial terminó con error de setup.
func (t TrialResult) Failed() bool {
	return t.Err != ""
}

// Objective puntúa un PerformanceReport; el optimizer ordena descendente.
type Objective func(PerformanceReport) float64

// TotalReturn es el objetivo por defecto.
func TotalReturn(r PerformanceReport) float64 {
	return r.TotalReturnPct
}

// RiskAdjustedReturn penaliza el retorno por el drawdown sufrido.
func RiskAdjustedReturn(r PerformanceReport) float64 {
	dd := r.MaxDrawdownPct
	if dd < 1 {
		dd = 1 // drawdowns minúsculos no deben inflar el score
	}
	return r.TotalReturnPct / dd
}

// SharpeObjective ordena por Sharpe de la curva de equity.
func SharpeObjective(r PerformanceReport) float64 {
	return SharpeRatio(r.EquityCurve)
}

// ObjectiveByName resuelve el nombre de config a la función. Nombres
// desconocidos caen al default (total_return).
func ObjectiveByName(name string) Objective {
	switch name {
	case "risk_adjusted":
		return RiskAdjustedReturn
	case "sharpe":
		return SharpeObjective
	default:
		return TotalReturn
	}
}
