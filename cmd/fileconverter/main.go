// Command fileconverter конвертирует медиафайлы по пресетам через внешние утилиты.
package main

import "github.com/artemshloyda/fileconverter/internal/cli"

func main() {
	cli.Execute()
}
