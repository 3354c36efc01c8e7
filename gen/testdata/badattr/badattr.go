package badattr

//mortar:derive Trace
//mortar:attr trace(deep)
type A struct{}

//mortar:derive Trace
//mortar:attr colour="red"
type B struct{}

//mortar:derive Trace
type C struct {
	X int `mortar:"skip"`
}

//mortar:derive Trace Debug
type D struct{}
