package merge

import "fmt"

// BadJSONError reports a request payload that could not be decoded at
// variable-seeding time.
type BadJSONError struct {
	Err error
}

func (e *BadJSONError) Error() string {
	return fmt.Sprintf("Error en el JSON. No se encuentra bien formado, no se hizo la lectura de variables: %v", e.Err)
}

func (e *BadJSONError) Unwrap() error {
	return e.Err
}

// VariableNotFoundError reports a variable required by the merge that has no
// matching input. Fatal in validation mode and during rebinding; rendered
// inline in render mode.
type VariableNotFoundError struct {
	Name string
}

func (e *VariableNotFoundError) Error() string {
	return fmt.Sprintf("No se encontró en el json a la variable %s", e.Name)
}

// VariableFormatError reports a supplied value that cannot be parsed into
// the variable's element type.
type VariableFormatError struct {
	Name  string
	Value string
}

func (e *VariableFormatError) Error() string {
	return fmt.Sprintf("Error en formato de la variable %s", e.Value)
}
