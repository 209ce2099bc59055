package viewmodels

type NotFoundPage struct {
	BaseViewModel
}
