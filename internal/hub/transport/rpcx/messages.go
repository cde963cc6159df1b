package rpcx

import "github.com/terminalhub/hub/internal/hub/domain"

// Wire messages, spec §6. Field names follow the snake_case the spec
// itself uses for the wire contract; Go call sites only ever see the
// domain package's CamelCase types, converted at the edges by the
// *FromReq/*FromWire helpers below.

// SubmoduleReq carries Register/Offline/Heartbeat/Update.
type SubmoduleReq struct {
	Name            string            `json:"name"`
	DefaultInstruct []string          `json:"default_instruct"`
	ConnectionKind  int               `json:"connection_kind"`
	Capability      int               `json:"capability"`
	ConnParams      map[string]string `json:"conn_params"`
}

// Resp is the uniform response envelope for every RPC in the contract.
type Resp struct {
	Code int `json:"code"`
}

func respFromCode(c domain.ResponseCode) *Resp { return &Resp{Code: int(c)} }

// TextInstruct carries SendTextInstruct.
type TextInstruct struct {
	InstructType              int    `json:"instruct_type"`
	Instruct                  string `json:"instruct"`
	ReceiveManipulateSubmodule string `json:"receive_manipulate_submodule"`
}

// SimpleManipulate carries SendSimpleManipulate.
type SimpleManipulate struct {
	ManipulateType int               `json:"manipulate_type"`
	UseModuleName  string            `json:"use_module_name"`
	Payload        map[string]string `json:"payload"`
}

// TextDisplayManipulate carries SendTextDisplayManipulate.
type TextDisplayManipulate struct {
	UseModuleName string `json:"use_module_name"`
	Text          string `json:"text"`
}

func moduleOperateFromReq(op domain.OperateType, req *SubmoduleReq) domain.ModuleOperate {
	out := domain.ModuleOperate{
		OperateType: op,
		Name:        req.Name,
	}
	if op == domain.OperateRegister || op == domain.OperateUpdate {
		out.Info = &domain.ModuleInfo{
			DefaultInstruct: req.DefaultInstruct,
			ConnectionKind:  domain.ConnectionKind(req.ConnectionKind),
			Capability:      domain.Capability(req.Capability),
			ConnConfig:      req.ConnParams,
		}
	}
	return out
}

func instructEntityFromWire(req *TextInstruct) domain.InstructEntity {
	return domain.InstructEntity{
		PayloadKind:                domain.InstructPayloadKind(req.InstructType),
		Text:                       req.Instruct,
		ReceiveManipulateSubmodule: req.ReceiveManipulateSubmodule,
	}
}

func manipulateEntityFromSimple(req *SimpleManipulate) domain.ManipulateEntity {
	return domain.ManipulateEntity{
		ManipulateType: domain.ManipulateType(req.ManipulateType),
		UseModuleName:  req.UseModuleName,
		Payload:        req.Payload,
	}
}

func manipulateEntityFromTextDisplay(req *TextDisplayManipulate) domain.ManipulateEntity {
	return domain.ManipulateEntity{
		ManipulateType: domain.ManipulateTextDisplay,
		UseModuleName:  req.UseModuleName,
		Text:           req.Text,
	}
}
