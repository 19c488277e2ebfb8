package types

// ConsoleInterface define a interface para saída no console.
type ConsoleInterface interface {
	Print(a ...interface{})
	Printf(format string, a ...interface{})
	Println(a ...interface{})

	LogInfo(format string, a ...interface{})
	LogWarning(format string, a ...interface{})
	LogError(format string, a ...interface{})
	LogSuccess(format string, a ...interface{})

	Status(message string) StatusHandle
	ProgressWithTotal(total int) ProgressHandle

	CreateTable() TableInterface
	DisplayBars(title string, bars []Bar)
	DisplayPanel(title string, body string)
}

// StatusHandle é uma interface para atualizar uma mensagem de status.
type StatusHandle interface {
	Update(message string)
	Stop()
}

// ProgressHandle é uma interface para atualizar uma barra de progresso.
type ProgressHandle interface {
	Increment()
	Stop()
}

// TableInterface define a interface para criar e manipular tabelas.
type TableInterface interface {
	AddColumn(name string, options ...interface{})
	AddRow(cells ...interface{})
	Render() string
}

// Bar é um valor rotulado para gráficos de barras. Max zero means the bars
// are scaled against the largest value.
type Bar struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Max   float64 `json:"max,omitempty"`
	// Suffix is appended to the printed value, e.g. "%".
	Suffix string `json:"suffix,omitempty"`
}
