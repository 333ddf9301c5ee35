//go:generate mockgen -destination=mock_sim.go -package=sim -self_package=github.com/michelleyho/ofs-platform-afu-bbb/sim -write_package_comment=false github.com/michelleyho/ofs-platform-afu-bbb/sim Port,Connection,Component,Engine,Buffer,Ticker

package sim
