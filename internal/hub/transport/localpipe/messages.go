package localpipe

import "github.com/terminalhub/hub/internal/hub/domain"

// Wire messages mirror the JSON shapes used by rpcx (spec §6 states
// pipe endpoints carry "the same ... payloads" as the RPC contract).

type wireModuleOperate struct {
	OperateType     int               `json:"operate_type"`
	Name            string            `json:"name"`
	DefaultInstruct []string          `json:"default_instruct"`
	ConnectionKind  int               `json:"connection_kind"`
	Capability      int               `json:"capability"`
	ConnParams      map[string]string `json:"conn_params"`
}

func (w wireModuleOperate) toDomain() domain.ModuleOperate {
	op := domain.ModuleOperate{
		OperateType: domain.OperateType(w.OperateType),
		Name:        w.Name,
	}
	if op.OperateType == domain.OperateRegister || op.OperateType == domain.OperateUpdate {
		op.Info = &domain.ModuleInfo{
			DefaultInstruct: w.DefaultInstruct,
			ConnectionKind:  domain.ConnectionKind(w.ConnectionKind),
			Capability:      domain.Capability(w.Capability),
			ConnConfig:      w.ConnParams,
		}
	}
	return op
}

type wireInstructEntity struct {
	InstructType               int    `json:"instruct_type"`
	Instruct                   string `json:"instruct"`
	ReceiveManipulateSubmodule string `json:"receive_manipulate_submodule"`
}

func (w wireInstructEntity) toDomain() domain.InstructEntity {
	return domain.InstructEntity{
		PayloadKind:                domain.InstructPayloadKind(w.InstructType),
		Text:                       w.Instruct,
		ReceiveManipulateSubmodule: w.ReceiveManipulateSubmodule,
	}
}

type wireManipulateEntity struct {
	ManipulateType int               `json:"manipulate_type"`
	UseModuleName  string            `json:"use_module_name"`
	Text           string            `json:"text"`
	Payload        map[string]string `json:"payload"`
}

func (w wireManipulateEntity) toDomain() domain.ManipulateEntity {
	return domain.ManipulateEntity{
		ManipulateType: domain.ManipulateType(w.ManipulateType),
		UseModuleName:  w.UseModuleName,
		Text:           w.Text,
		Payload:        w.Payload,
	}
}
