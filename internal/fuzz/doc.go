// Package fuzztests houses Go fuzz harnesses for the netlist pipeline
// (source -> lexer -> normalize -> reader -> writer). They guard against
// panics and runaway allocation on arbitrary input.
//
// Назначение: загружать байты в FileSet и прогонять их через чтение и
// запись для каждого входного диалекта.
//
// Не делает: генерацию корпусов, запись файлов на диск.
package fuzztests
