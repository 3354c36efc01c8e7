package emptysum

//mortar:derive Trace
type Value interface {
	isValue()
}
