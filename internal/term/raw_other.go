//go:build !(linux || darwin || dragonfly || freebsd || netbsd || openbsd)

package term

func makeRaw(fd int) (func() error, error) {
	return nil, ErrUnsupported
}
