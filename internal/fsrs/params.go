package fsrs

// ParametersToArray flattens Parameters into the 17-weight array plus
// request retention, for transport/storage as a plain slice.
func ParametersToArray(p Parameters) [18]float64 {
	var out [18]float64
	copy(out[:17], p.W[:])
	out[17] = p.RequestRetention
	return out
}

// ParametersFromArray is the inverse of ParametersToArray.
func ParametersFromArray(arr [18]float64) Parameters {
	var p Parameters
	copy(p.W[:], arr[:17])
	p.RequestRetention = arr[17]
	return p
}
