/*
Package control implements the cooperative cancellation primitive shared by every
runtime unit.

A Controller owns the canonical interruption flag of one runtime instance and a
single-use abort Registration. Interruptor values share the flag and may be copied
freely between goroutines to request a graceful (Stop(false)) or forced
(Stop(true)) stop.

	ctrl := control.NewController()
	reg, _ := ctrl.TakeRegistration()
	defer reg.Release()

	go func() { _ = ctrl.Interruptor().Stop(true) }()

	<-reg.Context().Done() // forced stop aborts the registered region
*/
package control
