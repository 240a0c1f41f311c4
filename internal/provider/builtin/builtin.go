// Package builtin 固定内置 provider 的注册顺序（即调度优先级）。
package builtin

import (
	"github.com/John-Robertt/boardsdl/internal/provider"
	"github.com/John-Robertt/boardsdl/internal/provider/chess24"
	"github.com/John-Robertt/boardsdl/internal/provider/chess2700"
	"github.com/John-Robertt/boardsdl/internal/provider/chess365"
	"github.com/John-Robertt/boardsdl/internal/provider/chessarena"
	"github.com/John-Robertt/boardsdl/internal/provider/chessbase"
	"github.com/John-Robertt/boardsdl/internal/provider/chessbomb"
	"github.com/John-Robertt/boardsdl/internal/provider/chesscom"
	"github.com/John-Robertt/boardsdl/internal/provider/chessdb"
	"github.com/John-Robertt/boardsdl/internal/provider/chessgames"
	"github.com/John-Robertt/boardsdl/internal/provider/chessking"
	"github.com/John-Robertt/boardsdl/internal/provider/chessorg"
	"github.com/John-Robertt/boardsdl/internal/provider/chesspastebin"
	"github.com/John-Robertt/boardsdl/internal/provider/chesspro"
	"github.com/John-Robertt/boardsdl/internal/provider/chesspuzzle"
	"github.com/John-Robertt/boardsdl/internal/provider/chesssamara"
	"github.com/John-Robertt/boardsdl/internal/provider/chesstempo"
	"github.com/John-Robertt/boardsdl/internal/provider/dragongo"
	"github.com/John-Robertt/boardsdl/internal/provider/echecsonline"
	"github.com/John-Robertt/boardsdl/internal/provider/europeechecs"
	"github.com/John-Robertt/boardsdl/internal/provider/ficgs"
	"github.com/John-Robertt/boardsdl/internal/provider/ficsgames"
	"github.com/John-Robertt/boardsdl/internal/provider/gameknot"
	"github.com/John-Robertt/boardsdl/internal/provider/gchess"
	"github.com/John-Robertt/boardsdl/internal/provider/generic"
	"github.com/John-Robertt/boardsdl/internal/provider/gokgs"
	"github.com/John-Robertt/boardsdl/internal/provider/goshrine"
	"github.com/John-Robertt/boardsdl/internal/provider/greenchess"
	"github.com/John-Robertt/boardsdl/internal/provider/iccf"
	"github.com/John-Robertt/boardsdl/internal/provider/ideachess"
	"github.com/John-Robertt/boardsdl/internal/provider/immortal"
	"github.com/John-Robertt/boardsdl/internal/provider/ingoweb"
	"github.com/John-Robertt/boardsdl/internal/provider/lichess"
	"github.com/John-Robertt/boardsdl/internal/provider/lidraughts"
	"github.com/John-Robertt/boardsdl/internal/provider/listudy"
	"github.com/John-Robertt/boardsdl/internal/provider/livechess24"
	"github.com/John-Robertt/boardsdl/internal/provider/mskchess"
	"github.com/John-Robertt/boardsdl/internal/provider/onlinego"
	"github.com/John-Robertt/boardsdl/internal/provider/playok"
	"github.com/John-Robertt/boardsdl/internal/provider/pychess"
	"github.com/John-Robertt/boardsdl/internal/provider/redhotpawn"
	"github.com/John-Robertt/boardsdl/internal/provider/schachspielen"
	"github.com/John-Robertt/boardsdl/internal/provider/schemingmind"
	"github.com/John-Robertt/boardsdl/internal/provider/thechessworld"
)

// Providers 返回全部内置 provider。具体站点在前，ChessBomb 排在 Chess.com 之前
// （两者共用 chess.com 域名，/events/ 属于前者）。整站认领的 provider 只认自己的域名，
// 其它站点上的 ChessBase 组件交给通用下载处理；通用下载永远在最后。
func Providers() []provider.Provider {
	ps := []provider.Provider{
		lichess.Provider{},
		lidraughts.Provider{},
		chessbomb.Provider{},
		chesscom.Provider{},
		chess24.Provider{},
		chessorg.Provider{},
		pychess.Provider{},
		immortal.Provider{},
		greenchess.Provider{},
		chessgames.Provider{},
		chess2700.Provider{},
		chess365.Provider{},
		chessbase.Provider{},
		chessdb.Provider{},
		chessking.Provider{},
		chesspastebin.Provider{},
		chesspro.Provider{},
		chesspuzzle.Provider{},
		chesssamara.Provider{},
		chesstempo.Provider{},
		europeechecs.Provider{},
		ficgs.Provider{},
		ficsgames.Provider{},
		gameknot.Provider{},
		iccf.Provider{},
		ideachess.Provider{},
		mskchess.Provider{},
		redhotpawn.Provider{},
		schachspielen.Provider{},
		thechessworld.Provider{},
		chessarena.Provider{},
		echecsonline.Provider{},
		gchess.Provider{},
		listudy.Provider{},
		livechess24.Provider{},
		schemingmind.Provider{},
	}
	for _, g := range playok.Games {
		ps = append(ps, playok.Provider{Game: g})
	}
	return append(ps,
		onlinego.Provider{},
		dragongo.Provider{},
		gokgs.Provider{},
		goshrine.Provider{},
		ingoweb.Provider{},
		generic.Provider{},
	)
}

// NewRegistry 用内置 provider 构造注册表。
func NewRegistry() (provider.Registry, error) {
	return provider.NewRegistry(Providers()...)
}
