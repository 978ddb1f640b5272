package utils

import "io"

func Must[T any](obj T, err error) T {
	if err != nil {
		panic(err)
	}
	return obj
}

func PanicIfErr(err error) {
	if err != nil {
		panic(err)
	}
}

func MustWriteMany(w io.Writer, slices ...[]byte) {
	for _, s := range slices {
		Must(w.Write(s))
	}
}
